package web

import "embed"

// TemplatesFS holds the HTML templates for the server-rendered UI.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS holds the static assets.
//
//go:embed static/*
var StaticFS embed.FS
