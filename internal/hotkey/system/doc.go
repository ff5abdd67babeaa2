// Package system implements hotkey.Backend for the host OS.
//
// macOS and Windows use golang.design/x/hotkey. On macOS the library
// requires hotkeys to be registered from the main thread, so the binary runs
// its whole body inside mainthread.Init.
//
// Linux grabs keys on the X root window over github.com/jezek/xgb. Each
// grab waits for the server's answer, so a chord held by another client is
// an error from Register and Unregister returns without waiting for input.
package system
