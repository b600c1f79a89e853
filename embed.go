package pubsite

import "embed"

// Assets contains the stylesheet and icons served under /assets/.
//
//go:embed assets/*
var Assets embed.FS
