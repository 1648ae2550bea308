package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

type createRoomResponse struct {
	ID int `json:"id"`
}

type stats struct {
	sent   atomic.Int64
	failed atomic.Int64
}

type loadTest struct {
	baseURL  string
	msgCount int
	delay    time.Duration
	logger   *zap.SugaredLogger
	stats    stats
}

func main() {
	baseURL := flag.String("url", "http://localhost:3000", "server base url")
	pairs := flag.Int("pairs", 50, "number of user pairs; each pair shares one room")
	msgCount := flag.Int("messages", 20, "messages per user")
	delay := flag.Duration("delay", 10*time.Millisecond, "pause between messages")
	flag.Parse()

	logger := zap.Must(zap.NewDevelopment()).Sugar()
	defer logger.Sync()

	lt := &loadTest{
		baseURL:  *baseURL,
		msgCount: *msgCount,
		delay:    *delay,
		logger:   logger,
	}

	logger.Infow("starting load test", "users", *pairs*2, "messages_per_user", *msgCount)
	start := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < *pairs; i++ {
		wg.Add(1)
		go func(pairID int) {
			defer wg.Done()
			lt.runPair(pairID)
		}(i)
	}
	wg.Wait()

	logger.Infow("load test complete",
		"sent", lt.stats.sent.Load(),
		"failed", lt.stats.failed.Load(),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
}

// runPair has user A create a room, user B join it, both post, and A delete
// the room again so the server ends up where it started.
func (lt *loadTest) runPair(pairID int) {
	userA := fmt.Sprintf("u_%d_a", pairID)
	userB := fmt.Sprintf("u_%d_b", pairID)

	clientA := lt.session(userA)
	clientB := lt.session(userB)
	if clientA == nil || clientB == nil {
		return
	}

	var room createRoomResponse
	if err := lt.call(clientA, http.MethodPost, "/room/create", map[string]string{"roomname": "load-" + userA}, http.StatusCreated, &room); err != nil {
		lt.logger.Warnw("create room failed", "user", userA, "error", err)
		return
	}
	if err := lt.call(clientB, http.MethodPost, fmt.Sprintf("/room/%d/join", room.ID), nil, http.StatusNoContent, nil); err != nil {
		lt.logger.Warnw("join room failed", "user", userB, "room_id", room.ID, "error", err)
		return
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go lt.postMessages(&wg, clientA, room.ID, userA)
	go lt.postMessages(&wg, clientB, room.ID, userB)
	wg.Wait()

	if err := lt.call(clientA, http.MethodDelete, fmt.Sprintf("/room/%d", room.ID), nil, http.StatusNoContent, nil); err != nil {
		lt.logger.Warnw("delete room failed", "user", userA, "room_id", room.ID, "error", err)
	}
}

// session gets a cookie-backed user and names it.
func (lt *loadTest) session(nickname string) *http.Client {
	jar, _ := cookiejar.New(nil)
	client := &http.Client{Jar: jar, Timeout: 10 * time.Second}

	if err := lt.call(client, http.MethodGet, "/", nil, http.StatusOK, nil); err != nil {
		lt.logger.Warnw("session failed", "user", nickname, "error", err)
		return nil
	}
	if err := lt.call(client, http.MethodPost, "/api/me/nickname", map[string]string{"nickname": nickname}, http.StatusOK, nil); err != nil {
		lt.logger.Warnw("rename failed", "user", nickname, "error", err)
		return nil
	}
	return client
}

func (lt *loadTest) postMessages(wg *sync.WaitGroup, client *http.Client, roomID int, user string) {
	defer wg.Done()

	path := fmt.Sprintf("/room/%d", roomID)
	for i := 0; i < lt.msgCount; i++ {
		msg := map[string]string{"message": fmt.Sprintf("LoadTest Msg %d from %s", i, user)}
		if err := lt.call(client, http.MethodPost, path, msg, http.StatusOK, nil); err != nil {
			lt.stats.failed.Add(1)
			lt.logger.Debugw("send failed", "user", user, "error", err)
			continue
		}
		lt.stats.sent.Add(1)
		time.Sleep(lt.delay)
	}
	lt.logger.Debugw("finished sending", "user", user, "messages", lt.msgCount)
}

func (lt *loadTest) call(client *http.Client, method, path string, body any, want int, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequest(method, lt.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		return fmt.Errorf("%s %s: got status %d, want %d", method, path, resp.StatusCode, want)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
