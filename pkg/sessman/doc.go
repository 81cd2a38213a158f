// Package sessman keeps authenticated HTTP sessions alive across process
// restarts.
//
// A Session bundles a cookie jar, the proxies it talks through and a user
// agent. SessionStore writes sessions to disk as records whose file
// modification time is their age. SessionWriter decides between reusing a
// stored session and creating a fresh one, and LoginController drives the
// login loop on top of it:
//
//	c, err := sessman.NewLoginController(&sessman.LoginOpts{
//		LoginURL:        "https://example.com/login",
//		LoginTestString: "Sign out",
//		Username:        user,
//		Password:        pass,
//		Folder:          dir,
//		Form:            loginform.New(),
//	})
//	res, err := c.Run()
//	if res.Ready() {
//		path, err := sessman.NewDownloader(nil).Download(c.Session(), fileURL, dest, "", 0)
//	}
package sessman
