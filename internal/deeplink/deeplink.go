// Package deeplink maps app URLs such as respira://chat/42 to screens.
package deeplink

import (
	"errors"
	"fmt"
	"maps"
	"net/url"
	"strings"
)

// Prefixes lists the URL prefixes the app answers to.
var Prefixes = []string{"myapp://", "breathlearngrow://", "respira://"}

const canonicalPrefix = "respira://"

type Screen string

const (
	ScreenDashboard       Screen = "Dashboard"
	ScreenChat            Screen = "Chat"
	ScreenBreathing       Screen = "Breathing"
	ScreenLibrary         Screen = "Library"
	ScreenPlaylist        Screen = "Playlist"
	ScreenChatDetail      Screen = "ChatDetail"
	ScreenBreathingDetail Screen = "BreathingDetail"
	ScreenLibraryDetail   Screen = "LibraryDetail"
	ScreenSettings        Screen = "Settings"
	ScreenProfile         Screen = "Profile"
	ScreenSubscription    Screen = "Subscription"
	ScreenLegal           Screen = "Legal"
	ScreenContact         Screen = "Contact"
)

var (
	ErrUnsupportedScheme = errors.New("deeplink: unsupported scheme")
	ErrUnknownRoute      = errors.New("deeplink: unknown route")
)

// Destination is where a link leads. Params holds path parameters and the
// query string.
type Destination struct {
	Screen Screen            `json:"screen"`
	Params map[string]string `json:"params,omitempty"`
}

// Tab reports whether the destination is one of the main tabs.
func (d Destination) Tab() bool {
	switch d.Screen {
	case ScreenDashboard, ScreenChat, ScreenBreathing, ScreenLibrary, ScreenPlaylist:
		return true
	}
	return false
}

type route struct {
	pattern []string
	screen  Screen
}

var routes = compile(map[string]Screen{
	"dashboard":             ScreenDashboard,
	"chat":                  ScreenChat,
	"breathing":             ScreenBreathing,
	"library":               ScreenLibrary,
	"playlist":              ScreenPlaylist,
	"chat/:conversationId":  ScreenChatDetail,
	"breathing/:technique":  ScreenBreathingDetail,
	"library/:bookId":       ScreenLibraryDetail,
	"settings":              ScreenSettings,
	"profile":               ScreenProfile,
	"subscription":          ScreenSubscription,
	"legal":                 ScreenLegal,
	"contact":               ScreenContact,
})

func compile(table map[string]Screen) []route {
	out := make([]route, 0, len(table))
	for p, s := range table {
		out = append(out, route{pattern: strings.Split(p, "/"), screen: s})
	}
	return out
}

// Parse resolves raw to a destination. An empty path opens the dashboard.
func Parse(raw string) (Destination, error) {
	rest, ok := trimPrefix(strings.TrimSpace(raw))
	if !ok {
		return Destination{}, fmt.Errorf("%w: %q", ErrUnsupportedScheme, raw)
	}

	path, query, _ := strings.Cut(rest, "?")
	path, _, _ = strings.Cut(path, "#")
	path = strings.Trim(path, "/")

	params := map[string]string{}
	if query != "" {
		values, err := url.ParseQuery(query)
		if err != nil {
			return Destination{}, fmt.Errorf("deeplink: query: %w", err)
		}
		for k := range values {
			params[k] = values.Get(k)
		}
	}

	if path == "" {
		return Destination{Screen: ScreenDashboard, Params: nilIfEmpty(params)}, nil
	}

	segments := strings.Split(path, "/")
	for i, seg := range segments {
		decoded, err := url.PathUnescape(seg)
		if err != nil {
			return Destination{}, fmt.Errorf("deeplink: path: %w", err)
		}
		segments[i] = decoded
	}

	for _, r := range routes {
		if pathParams, ok := r.match(segments); ok {
			maps.Copy(params, pathParams)
			return Destination{Screen: r.screen, Params: nilIfEmpty(params)}, nil
		}
	}
	return Destination{}, fmt.Errorf("%w: %q", ErrUnknownRoute, path)
}

// Format builds the canonical link for d.
func Format(d Destination) (string, error) {
	for _, r := range routes {
		if r.screen != d.Screen {
			continue
		}
		segments := make([]string, len(r.pattern))
		complete := true
		for i, p := range r.pattern {
			name, isParam := strings.CutPrefix(p, ":")
			if !isParam {
				segments[i] = p
				continue
			}
			v := d.Params[name]
			if v == "" {
				complete = false
				break
			}
			segments[i] = url.PathEscape(v)
		}
		if complete {
			return canonicalPrefix + strings.Join(segments, "/"), nil
		}
	}
	return "", fmt.Errorf("%w: screen %s", ErrUnknownRoute, d.Screen)
}

func (r route) match(segments []string) (map[string]string, bool) {
	if len(segments) != len(r.pattern) {
		return nil, false
	}
	params := map[string]string{}
	for i, p := range r.pattern {
		if name, ok := strings.CutPrefix(p, ":"); ok {
			if segments[i] == "" {
				return nil, false
			}
			params[name] = segments[i]
			continue
		}
		if p != segments[i] {
			return nil, false
		}
	}
	return params, true
}

func trimPrefix(raw string) (string, bool) {
	lower := strings.ToLower(raw)
	for _, p := range Prefixes {
		if strings.HasPrefix(lower, p) {
			return raw[len(p):], true
		}
	}
	return "", false
}

func nilIfEmpty(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	return m
}
