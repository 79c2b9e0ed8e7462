package transport

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// rawHall mirrors the hall listing XML's <hall><table .../></hall> shape.
type rawHall struct {
	Tables []rawTable `xml:"table"`
}

type rawTable struct {
	ID         string `xml:"id,attr"`
	Tournament string `xml:"tournament,attr"`
	Status     string `xml:"status,attr"`
	Format     string `xml:"format,attr"`
	GameID     string `xml:"gameId,attr"`
	Players    string `xml:"players,attr"`
	ChannelNum int     `xml:"channelNumber,attr"`
}

func parseHallTables(r io.Reader) ([]HallTable, int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, fmt.Errorf("transport: read hall response: %w", err)
	}

	var hall rawHall
	channelNumber := 0
	if err := xml.Unmarshal(data, &hall); err != nil {
		// Some responses wrap the tables in an outer element carrying the
		// channel number as its own attribute; fall back to a bare scan.
		var outer struct {
			ChannelNum int        `xml:"channelNumber,attr"`
			Hall       *rawHall   `xml:"hall"`
			Tables     []rawTable `xml:"table"`
		}
		if err2 := xml.Unmarshal(data, &outer); err2 != nil {
			return nil, 0, fmt.Errorf("transport: parse hall xml: %w", err)
		}
		if outer.Hall != nil {
			hall.Tables = outer.Hall.Tables
		} else {
			hall.Tables = outer.Tables
		}
		channelNumber = outer.ChannelNum
	}

	tables := make([]HallTable, 0, len(hall.Tables))
	for _, rt := range hall.Tables {
		name := rt.Tournament
		name = strings.TrimPrefix(name, "Casual - ")
		tables = append(tables, HallTable{
			ID:         rt.ID,
			Name:       name,
			Format:     rt.Format,
			Status:     rt.Status,
			GameID:     rt.GameID,
			Tournament: rt.Tournament,
			Players:    parsePlayers(rt.Players),
		})
		if rt.ChannelNum > channelNumber {
			channelNumber = rt.ChannelNum
		}
	}
	return tables, channelNumber, nil
}

// parsePlayers splits "Alice (DARK), Bob (LIGHT)" into structured seats.
func parsePlayers(raw string) []HallPlayer {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	players := make([]HallPlayer, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name := part
		side := ""
		if open := strings.LastIndex(part, "("); open >= 0 && strings.HasSuffix(part, ")") {
			name = strings.TrimSpace(part[:open])
			side = part[open+1 : len(part)-1]
		}
		players = append(players, HallPlayer{Name: name, Side: side})
	}
	return players
}

type rawError struct {
	Text string `xml:",chardata"`
}

func parseErrorResponse(r io.Reader) string {
	data, err := io.ReadAll(r)
	if err != nil {
		return ""
	}
	var wrapper struct {
		Error rawError `xml:"error"`
	}
	if xml.Unmarshal(data, &wrapper) != nil {
		return ""
	}
	return strings.TrimSpace(wrapper.Error.Text)
}

type rawDeckList struct {
	DarkDecks  []string `xml:"darkDeck"`
	LightDecks []string `xml:"lightDeck"`
}

func parseDeckList(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("transport: read deck list response: %w", err)
	}
	var decks rawDeckList
	if err := xml.Unmarshal(data, &decks); err != nil {
		return nil, fmt.Errorf("transport: parse deck list xml: %w", err)
	}
	all := make([]string, 0, len(decks.DarkDecks)+len(decks.LightDecks))
	all = append(all, decks.DarkDecks...)
	all = append(all, decks.LightDecks...)
	return all, nil
}

// ChatMessage is one line from a game's chat room.
type ChatMessage struct {
	From  string
	MsgID int
	Text  string
}

type rawChatMessage struct {
	From  string `xml:"from,attr"`
	MsgID int     `xml:"msgId,attr"`
	Text  string `xml:",chardata"`
}

type rawChatBatch struct {
	Messages []rawChatMessage `xml:"message"`
}

// parseChatMessages returns only messages newer than lastMsgID.
func parseChatMessages(r io.Reader, lastMsgID int) ([]ChatMessage, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("transport: read chat response: %w", err)
	}
	var batch rawChatBatch
	if err := xml.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("transport: parse chat xml: %w", err)
	}
	out := make([]ChatMessage, 0, len(batch.Messages))
	for _, m := range batch.Messages {
		if m.MsgID <= lastMsgID {
			continue
		}
		out = append(out, ChatMessage{From: m.From, MsgID: m.MsgID, Text: strings.TrimSpace(m.Text)})
	}
	return out, nil
}

// isXML reports whether text looks like an XML document, used to
// distinguish a well-formed error response from an opaque server failure.
func isXML(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), "<")
}

// parseGameChannelNumber extracts the "cn" attribute off a game update
// batch's root element (<update cn="..."> after a join, <gameState cn="...">
// on the first read). The server never sends a lower number than the one
// the caller polled with; fallback preserves that number rather than
// regressing the caller's channel tracker on a parse miss.
func parseGameChannelNumber(body string, fallback int) int {
	var root struct {
		ChannelNum int `xml:"cn,attr"`
	}
	if err := xml.Unmarshal([]byte(body), &root); err != nil || root.ChannelNum == 0 {
		return fallback
	}
	if root.ChannelNum < fallback {
		return fallback
	}
	return root.ChannelNum
}
