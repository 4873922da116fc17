package main

// General API documentation for swaggo. Run `swag init -g cmd/webpaneld/docs.go -d ./,./internal/httpapi,./pkg/types` to generate docs.
//
// @title           webpaneld API
// @version         1.0
// @description     HTTP API for managing embedded browser panel instances: open, navigate, focus and find-in-page.
//
// @contact.name   webpanel maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
