// Package app provides the main application logic for downloading GeekTime content.
// It initializes the necessary components, such as the GeekTime client, URL processor,
// template manager, and tag processor, and orchestrates the download process.
package app
