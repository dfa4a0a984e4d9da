package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

type feedFrame struct {
	Type    string          `json:"type"`
	Content json.RawMessage `json:"content"`
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Base URL of the server")
	listen := flag.Bool("listen", false, "Print messages from the live feed as they arrive")
	post := flag.String("post", "", "Post a message with the given text")
	lat := flag.Float64("lat", 0, "Latitude of the posted message")
	lng := flag.Float64("lng", 0, "Longitude of the posted message")
	help := flag.Bool("help", false, "Show this help")

	flag.Parse()

	if *help || (!*listen && *post == "") {
		fmt.Fprintln(os.Stderr, "usage: feedutil [-url URL] [-post TEXT -lat N -lng N] [-listen]")
		flag.PrintDefaults()
		os.Exit(0)
	}

	if *post != "" {
		if err := postMessage(*baseURL, *post, *lat, *lng); err != nil {
			log.Fatalf("Post failed: %v", err)
		}
	}

	if *listen {
		if err := listenFeed(*baseURL); err != nil {
			log.Fatalf("Listener stopped: %v", err)
		}
	}
}

func postMessage(baseURL, text string, lat, lng float64) error {
	body, err := json.Marshal(map[string]any{"message": text, "lat": lat, "lng": lng})
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Post(strings.TrimRight(baseURL, "/")+"/api/messages", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	reply, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(reply)))
	}
	fmt.Printf("Created: %s\n", reply)
	return nil
}

func listenFeed(baseURL string) error {
	u, err := url.Parse(baseURL)
	if err != nil {
		return err
	}
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", u, err)
	}
	defer conn.Close()
	fmt.Printf("Listening on %s (Ctrl+C to stop)\n", u)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	done := make(chan error, 1)
	go func() {
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				done <- err
				return
			}

			var frame feedFrame
			if err := json.Unmarshal(data, &frame); err != nil {
				log.Printf("Skipping malformed frame: %v", err)
				continue
			}
			if frame.Type == "message" {
				fmt.Printf("%s %s\n", time.Now().Format(time.TimeOnly), frame.Content)
			}
		}
	}()

	select {
	case err := <-done:
		return err
	case <-interrupt:
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		return conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	}
}
