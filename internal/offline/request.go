package offline

import (
	"net/http"
	"path"
	"strings"
)

// Destination is the resource class of a request.
type Destination string

const (
	DestDocument Destination = "document"
	DestStyle    Destination = "style"
	DestScript   Destination = "script"
	DestImage    Destination = "image"
	DestDefault  Destination = ""
)

// Strategy is how a request is served.
type Strategy string

const (
	NetworkFirst Strategy = "network-first"
	CacheFirst   Strategy = "cache-first"
	Bypass       Strategy = "bypass"
)

var extDestinations = map[string]Destination{
	".html":        DestDocument,
	".htm":         DestDocument,
	".css":         DestStyle,
	".js":          DestScript,
	".mjs":         DestScript,
	".ts":          DestScript,
	".tsx":         DestScript,
	".png":         DestImage,
	".jpg":         DestImage,
	".jpeg":        DestImage,
	".gif":         DestImage,
	".svg":         DestImage,
	".webp":        DestImage,
	".avif":        DestImage,
	".ico":         DestImage,
	".webmanifest": DestDefault,
	".json":        DestDefault,
}

// Classify determines the destination of r. The browser's Sec-Fetch-Dest
// header wins; otherwise the path extension, then the Accept header decide.
func Classify(r *http.Request) Destination {
	switch d := strings.ToLower(r.Header.Get("Sec-Fetch-Dest")); d {
	case "document", "iframe", "frame":
		return DestDocument
	case "style":
		return DestStyle
	case "script", "worker", "sharedworker", "serviceworker":
		return DestScript
	case "image":
		return DestImage
	case "":
	default:
		return DestDefault
	}

	if dest, ok := extDestinations[strings.ToLower(path.Ext(r.URL.Path))]; ok {
		return dest
	}

	accept := strings.ToLower(r.Header.Get("Accept"))
	switch {
	case strings.Contains(accept, "text/html"):
		return DestDocument
	case strings.Contains(accept, "text/css"):
		return DestStyle
	case strings.HasPrefix(accept, "image/"):
		return DestImage
	}
	return DestDefault
}

// StrategyFor maps a destination to its caching strategy.
func StrategyFor(d Destination) Strategy {
	switch d {
	case DestStyle, DestScript, DestImage:
		return CacheFirst
	default:
		return NetworkFirst
	}
}
