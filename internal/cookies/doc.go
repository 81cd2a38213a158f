// Package cookies reads cookies out of a browser's cookie store so a fresh
// session can start out already signed in. Firefox (moz_cookies) and Chrome
// (cookies, unencrypted values only) SQLite databases are supported, as is
// the Netscape cookies.txt format written by curl and most exporters.
//
// Cookie values are secrets: they are handed to the session jar and never
// logged or put into error messages.
package cookies
