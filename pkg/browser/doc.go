// Package browser drives a Chromium page through Playwright so it can be
// captured by the screenshot package.
//
// # Sessions
//
// A SessionManager owns the Playwright driver and the sessions launched
// from it:
//
//  1. Initialize installs and starts the driver
//  2. StartSession launches a browser with one page at the requested viewport
//  3. Navigate, ResizeViewport, SetCookie and InjectJavascript prepare the page
//  4. The Session is handed to screenshot.New, which uses MeasurePage,
//     ScrollTo and CaptureViewport
//  5. CloseSession or Shutdown releases the browser
//
// # Cancellation
//
// Playwright calls do not take a context. Every Session method runs its call
// in the background and returns as soon as ctx is done; screenshots also get
// the remaining ctx time as their Playwright timeout. An abandoned call still
// occupies the session until the driver answers, so calls on one session are
// issued strictly one after another.
package browser
