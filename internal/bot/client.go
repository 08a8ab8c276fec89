package bot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type Client struct {
	token  string
	httpc  *http.Client
	apiURL string
}

func NewClient(token string) *Client {
	return &Client{
		token:  token,
		apiURL: "https://api.telegram.org/bot" + token,
		httpc:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) send(method string, payload any) error {
	b, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", c.apiURL+"/"+method, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("telegram %s: %s", method, resp.Status)
	}
	return nil
}

func (c *Client) SendMessage(chatID int64, text string) error {
	return c.send("sendMessage", map[string]any{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "HTML",
	})
}

func (c *Client) SendPhoto(chatID int64, photoURL, caption string) error {
	data := map[string]any{
		"chat_id": chatID,
		"photo":   photoURL, // the /qr/{token}.png endpoint
	}
	if caption != "" {
		data["caption"] = caption
	}
	return c.send("sendPhoto", data)
}
