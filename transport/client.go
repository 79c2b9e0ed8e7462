// Package transport is the C2 GEMP HTTP client: a cookie-jar session that
// logs in, manages hall tables, and long-polls game state and chat as XML
// over plain HTTP, mirroring the browser session the web client itself
// uses.
package transport

import (
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// blockedHosts are production hosts this module must never touch: the bot
// is for local/test servers only.
var blockedHosts = []string{"gemp.starwarsccg.org", "www.starwarsccg.org"}

// Client is a GEMP HTTP session. It is not safe for concurrent use by
// multiple goroutines against the same game; one Client per worker.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration

	loggedUser string
	lastError  string

	// LongPollInterval is sent to the server as the hint for how long it
	// may hold a /game/{id} request open before returning with no update.
	LongPollInterval time.Duration
}

// New constructs a Client against serverURL, refusing to proceed if the
// host is one of the production GEMP servers.
func New(serverURL string) (*Client, error) {
	parsed, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("transport: parse server url: %w", err)
	}
	host := strings.ToLower(parsed.Hostname())
	for _, blocked := range blockedHosts {
		if host == blocked {
			return nil, fmt.Errorf("transport: refusing to connect to production host %q", host)
		}
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("transport: create cookie jar: %w", err)
	}

	return &Client{
		baseURL:          strings.TrimRight(serverURL, "/"),
		httpClient:       &http.Client{Jar: jar, Timeout: 15 * time.Second},
		timeout:          15 * time.Second,
		LongPollInterval: 3 * time.Second,
	}, nil
}

// LastError is the server-reported error text from the most recent failed
// call, if any.
func (c *Client) LastError() string {
	return c.lastError
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; randobot-go)")
	req.Header.Set("Accept", "text/xml, application/xml, */*")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
}

func (c *Client) get(path string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)
	return c.httpClient.Do(req)
}

func (c *Client) postForm(path string, form url.Values) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.httpClient.Do(req)
}

// Login authenticates and records the session cookie via the jar.
func (c *Client) Login(username, password string) error {
	form := url.Values{"login": {username}, "password": {password}}
	resp, err := c.postForm("/login", form)
	if err != nil {
		return fmt.Errorf("transport: login request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.lastError = fmt.Sprintf("login failed with status %d", resp.StatusCode)
		return fmt.Errorf("transport: %s", c.lastError)
	}

	c.loggedUser = username
	log.Info().Str("user", username).Msg("transport: logged in")
	return nil
}

// HallTable is one row of the hall's table listing.
type HallTable struct {
	ID         string
	Name       string
	Format     string
	Status     string
	GameID     string
	Tournament string
	Players    []HallPlayer
}

// HallPlayer is one seat on a HallTable.
type HallPlayer struct {
	Name string
	Side string
}

// HallList fetches the current hall tables along with the channel number
// to resume from on the next UpdateHall call.
func (c *Client) HallList() ([]HallTable, int, error) {
	resp, err := c.get("/hall?participantId=null")
	if err != nil {
		return nil, 0, fmt.Errorf("transport: hall list request: %w", err)
	}
	defer resp.Body.Close()
	return parseHallTables(resp.Body)
}

// UpdateHall long-polls the hall for changes since channelNumber. A 409
// response means the channel number is stale; the caller should fall back
// to HallList to resynchronize.
func (c *Client) UpdateHall(channelNumber int) ([]HallTable, int, error) {
	form := url.Values{
		"channelNumber": {strconv.Itoa(channelNumber)},
		"participantId": {"null"},
	}
	resp, err := c.postForm("/hall/update", form)
	if err != nil {
		return nil, channelNumber, fmt.Errorf("transport: hall update request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		return c.HallList()
	}
	return parseHallTables(resp.Body)
}

// CreateTable opens a new table and polls briefly for it to appear in the
// hall listing under our own name before giving up.
func (c *Client) CreateTable(deckName, tableName, gameFormat string) (string, error) {
	form := url.Values{
		"sampleDeck": {deckName},
		"format":     {gameFormat},
		"tableDesc":  {tableName},
		"isPrivate":  {"false"},
	}
	resp, err := c.postForm("/hall", form)
	if err != nil {
		return "", fmt.Errorf("transport: create table request: %w", err)
	}
	defer resp.Body.Close()

	if errText := parseErrorResponse(resp.Body); errText != "" {
		c.lastError = errText
		return "", fmt.Errorf("transport: create table: %s", errText)
	}

	for attempt := 0; attempt < 3; attempt++ {
		tables, _, err := c.HallList()
		if err == nil {
			for _, t := range tables {
				if t.Name != tableName {
					continue
				}
				for _, p := range t.Players {
					if p.Name == c.loggedUser {
						return t.ID, nil
					}
				}
			}
		}
		time.Sleep(500 * time.Millisecond)
	}
	return "", fmt.Errorf("transport: created table %q not found in hall listing", tableName)
}

// JoinTable seats us at an existing table using deckName.
func (c *Client) JoinTable(tableID, deckName string) error {
	form := url.Values{"sampleDeck": {deckName}}
	resp, err := c.postForm("/hall/"+tableID, form)
	if err != nil {
		return fmt.Errorf("transport: join table request: %w", err)
	}
	defer resp.Body.Close()
	if errText := parseErrorResponse(resp.Body); errText != "" {
		return fmt.Errorf("transport: join table: %s", errText)
	}
	return nil
}

// LeaveTable drops our seat at tableID.
func (c *Client) LeaveTable(tableID string) error {
	form := url.Values{"action": {"drop"}}
	resp, err := c.postForm("/hall/"+tableID, form)
	if err != nil {
		return fmt.Errorf("transport: leave table request: %w", err)
	}
	defer resp.Body.Close()
	return nil
}

// JoinGame fetches the initial game state XML for gameID, along with the
// channel number its root <gameState cn="..."> element carries, which is
// this game's fresh channel sequence (unrelated to the hall's).
func (c *Client) JoinGame(gameID string) (string, int, error) {
	resp, err := c.get("/game/" + gameID + "?participantId=null")
	if err != nil {
		return "", 0, fmt.Errorf("transport: join game request: %w", err)
	}
	defer resp.Body.Close()
	body, err := readBody(resp)
	if err != nil {
		return "", 0, err
	}
	return body, parseGameChannelNumber(body, 0), nil
}

// GameUpdateResult is the outcome of one GameUpdate long-poll call.
type GameUpdateResult struct {
	XML            string
	ChannelNumber  int
	SessionExpired bool
	NoUpdate       bool
}

// GameUpdate long-polls for events on gameID past channelNumber. The
// server is always sent a non-decreasing channel number; callers must
// never invoke this with a number smaller than the one from their last
// successful call (property 5). The response's root <update cn="..."/>
// (or <gameState cn="..."/> on the first call after a join) carries the
// new channel number the caller must resume from.
func (c *Client) GameUpdate(gameID string, channelNumber int) (GameUpdateResult, error) {
	form := url.Values{
		"participantId":       {"null"},
		"channelNumber":       {strconv.Itoa(channelNumber)},
		"longPollingInterval": {strconv.Itoa(int(c.LongPollInterval.Milliseconds()))},
	}
	resp, err := c.postForm("/game/"+gameID, form)
	if err != nil {
		return GameUpdateResult{ChannelNumber: channelNumber}, fmt.Errorf("transport: game update request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		return GameUpdateResult{SessionExpired: true, ChannelNumber: channelNumber}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return GameUpdateResult{ChannelNumber: channelNumber}, fmt.Errorf("transport: game update status %d", resp.StatusCode)
	}

	body, err := readBody(resp)
	if err != nil {
		return GameUpdateResult{ChannelNumber: channelNumber}, err
	}
	if strings.TrimSpace(body) == "" {
		return GameUpdateResult{NoUpdate: true, ChannelNumber: channelNumber}, nil
	}
	newChannel := parseGameChannelNumber(body, channelNumber)
	return GameUpdateResult{XML: body, ChannelNumber: newChannel}, nil
}

// PostDecision answers a pending decision.
func (c *Client) PostDecision(gameID string, channelNumber int, decisionID, decisionValue string) error {
	form := url.Values{
		"participantId": {"null"},
		"channelNumber": {strconv.Itoa(channelNumber)},
		"decisionId":    {decisionID},
		"decisionValue": {decisionValue},
	}
	resp, err := c.postForm("/game/"+gameID, form)
	if err != nil {
		return fmt.Errorf("transport: post decision request: %w", err)
	}
	defer resp.Body.Close()
	return nil
}

// ConcedeGame forfeits gameID.
func (c *Client) ConcedeGame(gameID string) error {
	resp, err := c.postForm("/game/"+gameID+"/concede", url.Values{})
	if err != nil {
		return fmt.Errorf("transport: concede request: %w", err)
	}
	defer resp.Body.Close()
	return nil
}

// ListLibraryDecks returns the names of the shared sample-deck library.
func (c *Client) ListLibraryDecks() ([]string, error) {
	resp, err := c.get("/deck/libraryList")
	if err != nil {
		return nil, fmt.Errorf("transport: library deck list request: %w", err)
	}
	defer resp.Body.Close()
	return parseDeckList(resp.Body)
}

// ListUserDecks returns the names of our own saved decks.
func (c *Client) ListUserDecks() ([]string, error) {
	resp, err := c.get("/deck/list")
	if err != nil {
		return nil, fmt.Errorf("transport: user deck list request: %w", err)
	}
	defer resp.Body.Close()
	return parseDeckList(resp.Body)
}

// RegisterChat joins gameID's chat room, returning the highest message id
// already posted so the caller can request only newer ones.
func (c *Client) RegisterChat(gameID string) (int, error) {
	resp, err := c.get("/chat/Game" + gameID + "?participantId=null")
	if err != nil {
		return 0, fmt.Errorf("transport: register chat request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("transport: register chat status %d", resp.StatusCode)
	}
	messages, err := parseChatMessages(resp.Body, 0)
	if err != nil {
		return 0, err
	}
	last := 0
	for _, m := range messages {
		if m.MsgID > last {
			last = m.MsgID
		}
	}
	return last, nil
}

// GetChatMessages fetches messages newer than lastMsgID. A 410 means the
// room evicted us for inactivity; the caller should RegisterChat again.
func (c *Client) GetChatMessages(gameID string, lastMsgID int) ([]ChatMessage, bool, error) {
	form := url.Values{
		"participantId":    {"null"},
		"latestMsgIdRcvd": {strconv.Itoa(lastMsgID)},
	}
	resp, err := c.postForm("/chat/Game"+gameID, form)
	if err != nil {
		return nil, false, fmt.Errorf("transport: get chat messages request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone {
		return nil, true, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("transport: get chat messages status %d", resp.StatusCode)
	}
	messages, err := parseChatMessages(resp.Body, lastMsgID)
	return messages, false, err
}

// PostChatMessage posts text to gameID's chat room.
func (c *Client) PostChatMessage(gameID, text string) error {
	form := url.Values{"message": {text}}
	resp, err := c.postForm("/chat/Game"+gameID, form)
	if err != nil {
		return fmt.Errorf("transport: post chat message request: %w", err)
	}
	defer resp.Body.Close()
	return nil
}

// GetCardInfo fetches the server's description of cardID within gameID,
// used to resolve a blueprint id when the local registry misses.
func (c *Client) GetCardInfo(gameID, cardID string) (string, error) {
	resp, err := c.get("/game/" + gameID + "/cardInfo?cardId=" + url.QueryEscape(cardID))
	if err != nil {
		return "", fmt.Errorf("transport: get card info request: %w", err)
	}
	defer resp.Body.Close()
	return readBody(resp)
}

func readBody(resp *http.Response) (string, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("transport: read response body: %w", err)
	}
	return string(body), nil
}
