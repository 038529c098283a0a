package qbt

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/go-resty/resty/v2"
)

// ErrLoginFailed is returned when qBittorrent rejects the credentials.
var ErrLoginFailed = errors.New("qbittorrent rejected the credentials")

// Client talks to the qBittorrent Web API v2. The session cookie issued
// by Login is kept in the underlying resty cookie jar, so a single
// client is good for the whole process run.
type Client struct {
	cli *resty.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		cli: resty.New().SetBaseURL(baseURL),
	}
}

// Login authenticates against the Web API. qBittorrent answers 200 with
// body "Ok." on success and "Fails." on bad credentials, so the status
// code alone is not enough.
func (c *Client) Login(username, password string) error {
	resp, err := c.cli.R().
		SetFormData(map[string]string{
			"username": username,
			"password": password,
		}).
		Post("/api/v2/auth/login")
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if resp.StatusCode() != 200 || resp.String() != "Ok." {
		return ErrLoginFailed
	}
	return nil
}

// Torrents lists every torrent registered in the client.
func (c *Client) Torrents() ([]Torrent, error) {
	torrents := make([]Torrent, 0)
	resp, err := c.cli.R().
		SetResult(&torrents).
		Get("/api/v2/torrents/info")
	if err != nil {
		return nil, fmt.Errorf("list torrents: %w", err)
	}
	if err := checkStatus(resp, "list torrents"); err != nil {
		return nil, err
	}
	return torrents, nil
}

// Files lists the content files of one torrent.
func (c *Client) Files(hash string) ([]File, error) {
	files := make([]File, 0)
	resp, err := c.cli.R().
		SetQueryParam("hash", hash).
		SetResult(&files).
		Get("/api/v2/torrents/files")
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	if err := checkStatus(resp, "list files"); err != nil {
		return nil, err
	}
	return files, nil
}

func (c *Client) SetFilePriority(hash string, index int, prio Priority) error {
	resp, err := c.cli.R().
		SetFormData(map[string]string{
			"hash":     hash,
			"id":       strconv.Itoa(index),
			"priority": strconv.Itoa(int(prio)),
		}).
		Post("/api/v2/torrents/filePrio")
	if err != nil {
		return fmt.Errorf("set file priority: %w", err)
	}
	return checkStatus(resp, "set file priority")
}

func (c *Client) Pause(hash string) error {
	return c.hashesPost("/api/v2/torrents/pause", "pause", hash, nil)
}

func (c *Client) Resume(hash string) error {
	return c.hashesPost("/api/v2/torrents/resume", "resume", hash, nil)
}

// Delete detaches the torrent from the client. With keepFiles the
// downloaded data stays on disk.
func (c *Client) Delete(hash string, keepFiles bool) error {
	return c.hashesPost("/api/v2/torrents/delete", "delete", hash, map[string]string{
		"deleteFiles": strconv.FormatBool(!keepFiles),
	})
}

// Shutdown asks the qBittorrent application to exit.
func (c *Client) Shutdown() error {
	resp, err := c.cli.R().Post("/api/v2/app/shutdown")
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return checkStatus(resp, "shutdown")
}

func (c *Client) hashesPost(path, op, hash string, extra map[string]string) error {
	form := map[string]string{"hashes": hash}
	for k, v := range extra {
		form[k] = v
	}
	resp, err := c.cli.R().
		SetFormData(form).
		Post(path)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return checkStatus(resp, op)
}

func checkStatus(resp *resty.Response, op string) error {
	if resp.StatusCode() != 200 {
		return fmt.Errorf("%s: status code: %d, error: %s", op, resp.StatusCode(), resp.String())
	}
	return nil
}
