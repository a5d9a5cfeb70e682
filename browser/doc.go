// Package browser provides core.BrowserPresenter implementations for opening
// payment redirect URLs.
package browser
