package model

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrTagMalformedRecord marks a raw notification that lacks a required field
	ErrTagMalformedRecord = goerr.NewTag("malformed_record")

	// ErrTagConfig marks an invalid or missing configuration value
	ErrTagConfig = goerr.NewTag("config")

	// ErrTagExternal marks a failed call to GitHub, the task store or another collaborator
	ErrTagExternal = goerr.NewTag("external_call")
)
