package main

import (
	"bufio"
	"encoding/json"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strings"

	"github.com/gorilla/websocket"
)

type event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

func send(c *websocket.Conn, name string, data interface{}) error {
	frame, err := json.Marshal(event{Event: name, Data: data})
	if err != nil {
		return err
	}
	return c.WriteMessage(websocket.TextMessage, frame)
}

// main runs a minimal interactive client for manual testing. Commands:
//
//	join <name>
//	reconnect <name>
//	start
//	propose <name> <name> ...
//	teamvote yes|no
//	missionvote success|fail
//	assassinate <name>
//	newgame
func main() {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	u := url.URL{Scheme: "ws", Host: "localhost:3000", Path: "/ws"}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})

	// Read loop
	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}
			log.Printf("<- %s", message)
		}
	}()

	// Input loop
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			fields := strings.Fields(scanner.Text())
			if len(fields) == 0 {
				continue
			}

			var err error
			switch fields[0] {
			case "join":
				if len(fields) == 2 {
					err = send(c, "join", map[string]string{"name": fields[1]})
				}
			case "reconnect":
				if len(fields) == 2 {
					err = send(c, "reconnect-player", map[string]string{"name": fields[1]})
				}
			case "start":
				err = send(c, "start-game", nil)
			case "propose":
				err = send(c, "propose-team", map[string]interface{}{"team": fields[1:]})
			case "teamvote":
				if len(fields) == 2 {
					err = send(c, "submit-team-vote", map[string]bool{"vote": fields[1] == "yes"})
				}
			case "missionvote":
				if len(fields) == 2 {
					err = send(c, "submit-mission-vote", map[string]bool{"vote": fields[1] == "success"})
				}
			case "assassinate":
				if len(fields) == 2 {
					err = send(c, "assassinate", map[string]string{"target": fields[1]})
				}
			case "newgame":
				err = send(c, "new-game", nil)
			default:
				log.Printf("Unknown command: %s", fields[0])
			}
			if err != nil {
				log.Printf("Send failed: %v", err)
				return
			}
		}
	}()

	select {
	case <-done:
	case <-interrupt:
		log.Println("Interrupted")
	}
}
