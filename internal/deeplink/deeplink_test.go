package deeplink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		url    string
		screen Screen
		params map[string]string
	}{
		{"respira://dashboard", ScreenDashboard, nil},
		{"myapp://chat", ScreenChat, nil},
		{"breathlearngrow://playlist/", ScreenPlaylist, nil},
		{"respira://chat/7f3c", ScreenChatDetail, map[string]string{"conversationId": "7f3c"}},
		{"respira://breathing/box", ScreenBreathingDetail, map[string]string{"technique": "box"}},
		{"respira://library/la-princesse-de-cleves?from=dashboard", ScreenLibraryDetail,
			map[string]string{"bookId": "la-princesse-de-cleves", "from": "dashboard"}},
		{"respira://library/le%20petit%20prince", ScreenLibraryDetail, map[string]string{"bookId": "le petit prince"}},
		{"RESPIRA://settings", ScreenSettings, nil},
		{"respira://profile#top", ScreenProfile, nil},
		{"respira://subscription", ScreenSubscription, nil},
		{"respira://legal", ScreenLegal, nil},
		{"respira://contact", ScreenContact, nil},
		{"respira://", ScreenDashboard, nil},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			d, err := Parse(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.screen, d.Screen)
			assert.Equal(t, tt.params, d.Params)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse("https://respira-care.fr/chat")
	assert.ErrorIs(t, err, ErrUnsupportedScheme)

	for _, u := range []string{"respira://unknown", "respira://chat/1/2", "respira://settings/x"} {
		_, err := Parse(u)
		assert.ErrorIs(t, err, ErrUnknownRoute, u)
	}
}

func TestFormat_RoundTrip(t *testing.T) {
	in := Destination{Screen: ScreenLibraryDetail, Params: map[string]string{"bookId": "le petit prince"}}
	link, err := Format(in)
	require.NoError(t, err)
	assert.Equal(t, "respira://library/le%20petit%20prince", link)

	out, err := Parse(link)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	link, err = Format(Destination{Screen: ScreenChat})
	require.NoError(t, err)
	assert.Equal(t, "respira://chat", link)

	_, err = Format(Destination{Screen: ScreenChatDetail})
	assert.ErrorIs(t, err, ErrUnknownRoute)
}

func TestDestination_Tab(t *testing.T) {
	assert.True(t, Destination{Screen: ScreenPlaylist}.Tab())
	assert.False(t, Destination{Screen: ScreenChatDetail}.Tab())
}
