// Package browser drives a real Chrome tab through chromedp: it reads a
// form's markup from a live page and replays the writes recorded on the
// in-memory document back onto that page.
package browser
