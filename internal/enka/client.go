package enka

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/elisartix/herder/internal/logger"
)

const (
	apiBase   = "https://enka.network/api/uid/"
	storeBase = "https://raw.githubusercontent.com/EnkaNetwork/API-docs/master/store/"
	userAgent = "herder/1.0"
)

// Errors surfaced to the command layer. Everything else from the API is
// wrapped into a generic fetch error.
var (
	ErrBadUID      = errors.New("the uid is malformed")
	ErrUnknownUID  = errors.New("no player with this uid")
	ErrRateLimited = errors.New("enka.network rate limit hit, retry later")
)

var uidPattern = regexp.MustCompile(`^\d{9,10}$`)

// ValidUID reports whether s looks like a Genshin account uid.
func ValidUID(s string) bool {
	return uidPattern.MatchString(s)
}

// Client fetches player showcases from the Enka.Network API and lazily loads
// the character metadata and localization stores.
type Client struct {
	http    *http.Client
	dataDir string

	metaOnce sync.Once
	metaErr  error
	chars    map[string]charMeta
	loc      map[string]string
}

func NewClient(timeout time.Duration, dataDir string) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		dataDir: dataDir,
	}
}

// FetchProfile pulls the raw showcase for uid and maps API status codes to
// typed errors.
func (c *Client) FetchProfile(uid string) (*RawProfile, error) {
	if !ValidUID(uid) {
		return nil, ErrBadUID
	}

	req, err := http.NewRequest("GET", apiBase+uid, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("enka request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusBadRequest:
		return nil, ErrBadUID
	case http.StatusNotFound:
		return nil, ErrUnknownUID
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	default:
		return nil, fmt.Errorf("enka returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read enka response: %w", err)
	}

	var raw RawProfile
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode enka response: %w", err)
	}
	if raw.PlayerInfo == nil {
		return nil, fmt.Errorf("enka response has no player info")
	}
	return &raw, nil
}

// loadMeta fetches characters.json and loc.json from the API-docs store,
// falling back to files under dataDir when the network is unavailable. The
// result is cached for the process lifetime.
func (c *Client) loadMeta() error {
	c.metaOnce.Do(func() {
		chars, err := c.loadStoreFile("characters.json")
		if err != nil {
			c.metaErr = fmt.Errorf("load characters store: %w", err)
			return
		}
		if err := json.Unmarshal(chars, &c.chars); err != nil {
			c.metaErr = fmt.Errorf("decode characters store: %w", err)
			return
		}

		locRaw, err := c.loadStoreFile("loc.json")
		if err != nil {
			c.metaErr = fmt.Errorf("load localization store: %w", err)
			return
		}
		var locAll map[string]map[string]string
		if err := json.Unmarshal(locRaw, &locAll); err != nil {
			c.metaErr = fmt.Errorf("decode localization store: %w", err)
			return
		}
		if ru, ok := locAll["ru"]; ok {
			c.loc = ru
		} else {
			c.loc = locAll["en"]
		}
	})
	return c.metaErr
}

func (c *Client) loadStoreFile(name string) ([]byte, error) {
	req, err := http.NewRequest("GET", storeBase+name, nil)
	if err == nil {
		req.Header.Set("User-Agent", userAgent)
		if resp, derr := c.http.Do(req); derr == nil {
			defer resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return io.ReadAll(resp.Body)
			}
			logger.Warn("store fetch returned non-200", map[string]interface{}{
				"file":   name,
				"status": resp.StatusCode,
			})
		} else {
			logger.Warn("store fetch failed, trying local copy", map[string]interface{}{
				"file":  name,
				"error": derr.Error(),
			})
		}
	}

	if c.dataDir == "" {
		return nil, fmt.Errorf("no local copy of %s", name)
	}
	return os.ReadFile(filepath.Clean(filepath.Join(c.dataDir, name)))
}

// charName resolves an avatar id to a localized character name.
func (c *Client) charName(avatarID int) string {
	if err := c.loadMeta(); err != nil {
		return fmt.Sprintf("#%d", avatarID)
	}
	meta, ok := c.chars[fmt.Sprint(avatarID)]
	if !ok {
		return fmt.Sprintf("#%d", avatarID)
	}
	if name, ok := c.loc[meta.NameTextMapHash.String()]; ok && name != "" {
		return name
	}
	return fmt.Sprintf("#%d", avatarID)
}

func (c *Client) charMetaFor(avatarID int) (charMeta, bool) {
	if err := c.loadMeta(); err != nil {
		return charMeta{}, false
	}
	meta, ok := c.chars[fmt.Sprint(avatarID)]
	return meta, ok
}

// localize resolves a text map hash through the loaded localization table.
func (c *Client) localize(hash string) string {
	if err := c.loadMeta(); err != nil {
		return hash
	}
	if s, ok := c.loc[hash]; ok && s != "" {
		return s
	}
	return hash
}
