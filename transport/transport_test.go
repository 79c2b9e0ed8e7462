package transport

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsBlockedHost(t *testing.T) {
	_, err := New("https://gemp.starwarsccg.org/gemp-swccg-server/")
	assert.Error(t, err)
}

func TestNewAcceptsLocalHost(t *testing.T) {
	c, err := New("http://localhost:8082/gemp-swccg-server/")
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func TestParseHallTables(t *testing.T) {
	xml := `<hall channelNumber="7">
		<table id="1" tournament="Casual - Open Play" status="waiting" format="open" gameId="" players="rando_cal (DARK)"/>
	</hall>`
	tables, channel, err := parseHallTables(strings.NewReader(xml))
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, "Open Play", tables[0].Name)
	assert.Equal(t, 7, channel)
	require.Len(t, tables[0].Players, 1)
	assert.Equal(t, "rando_cal", tables[0].Players[0].Name)
	assert.Equal(t, "DARK", tables[0].Players[0].Side)
}

func TestParsePlayersMultiple(t *testing.T) {
	players := parsePlayers("Alice (DARK), Bob (LIGHT)")
	require.Len(t, players, 2)
	assert.Equal(t, "Bob", players[1].Name)
	assert.Equal(t, "LIGHT", players[1].Side)
}

func TestParseErrorResponse(t *testing.T) {
	xml := `<result><error>Table name already in use</error></result>`
	assert.Equal(t, "Table name already in use", parseErrorResponse(strings.NewReader(xml)))
}

func TestParseChatMessagesFiltersByLastID(t *testing.T) {
	xml := `<chat><message from="Alice" msgId="1">hi</message><message from="Bob" msgId="2">there</message></chat>`
	messages, err := parseChatMessages(strings.NewReader(xml), 1)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, 2, messages[0].MsgID)
}

func TestChannelTrackerRejectsRegression(t *testing.T) {
	var tr ChannelTracker
	require.NoError(t, tr.Observe(5))
	require.NoError(t, tr.Observe(5))
	require.NoError(t, tr.Observe(9))
	assert.Error(t, tr.Observe(3))
	assert.Equal(t, 9, tr.Next())
}

func TestParseGameChannelNumberFromUpdateRoot(t *testing.T) {
	xml := `<update cn="42"><ge type="PHASE" phase="DEPLOY"/></update>`
	assert.Equal(t, 42, parseGameChannelNumber(xml, 7))
}

func TestParseGameChannelNumberFromGameStateRoot(t *testing.T) {
	xml := `<gameState cn="1"><ge type="GAME_STATE"/></gameState>`
	assert.Equal(t, 1, parseGameChannelNumber(xml, 0))
}

func TestParseGameChannelNumberFallsBackOnRegression(t *testing.T) {
	// A malformed or stale cn must never move the caller's tracker backwards.
	xml := `<update cn="2"/>`
	assert.Equal(t, 9, parseGameChannelNumber(xml, 9))
}

func TestParseGameChannelNumberFallsBackOnMissingAttr(t *testing.T) {
	xml := `<update><ge type="CHAT" message="hi"/></update>`
	assert.Equal(t, 7, parseGameChannelNumber(xml, 7))
}
