// Package browser provides the live page a computer-use model drives, backed by
// Playwright.
//
// A Session owns the Playwright driver, one Chromium instance, one browser
// context and one page. It is opened once per run and closed on exit.
//
// # Launch
//
// Chromium is launched with the chromium sandbox on, an empty environment and
// extensions and file-system access disabled. The viewport is fixed at launch
// and must match the display size advertised to the model, since the model's
// coordinates are viewport pixels.
//
// # Input
//
// Session implements computer.Page: mouse clicks and moves at viewport
// coordinates, window scrolling, key presses and text entry all go through the
// Playwright mouse and keyboard rather than element selectors.
//
// # Example Usage
//
//	session, err := browser.Launch(browser.Options{
//	    Viewport: browser.Viewport{Width: 1024, Height: 768},
//	})
//	if err != nil {
//	    return err
//	}
//	defer session.Close()
//
//	if err := session.Navigate("https://bing.com", browser.NavigateOptions{}); err != nil {
//	    return err
//	}
//	png, err := session.Screenshot()
package browser
