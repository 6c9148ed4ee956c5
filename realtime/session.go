package realtime

import (
	"context"
	"errors"
	"log"
	"math"
	"time"

	"github.com/gorilla/websocket"

	"FACEGATE/extractor"
	"FACEGATE/matcher"
)

const (
	eventVerifyFace         = "verify_face"
	eventVerificationResult = "verification_result"

	// One frame per second from the reference client; a little headroom so a
	// short processing stall does not drop frames immediately.
	inboundBuffer  = 4
	outboundBuffer = 8

	writeTimeout = 10 * time.Second
)

type inboundMessage struct {
	Event       string `json:"event"`
	ImageData   string `json:"imageData"`
	CompanyName string `json:"companyName"`
	GroupName   string `json:"groupName"`
}

// ResultItem is one entry of a verification_result payload. Distance is set
// only when a descriptor comparison actually ran.
type ResultItem struct {
	Verified bool     `json:"verified"`
	Name     string   `json:"name"`
	Distance *float64 `json:"distance,omitempty"`
}

type outboundMessage struct {
	Event string       `json:"event"`
	Data  []ResultItem `json:"data"`
}

// session is one connected camera client. Three goroutines: the reader feeds
// frames into inbound, the worker processes them one at a time, the writer
// drains outbound. A stalled peer only stalls its own goroutines.
type session struct {
	gw    *Gateway
	conn  *websocket.Conn
	scope Scope

	inbound  chan inboundMessage
	outbound chan outboundMessage
	done     chan struct{}
}

func newSession(gw *Gateway, conn *websocket.Conn, scope Scope) *session {
	return &session{
		gw:       gw,
		conn:     conn,
		scope:    scope,
		inbound:  make(chan inboundMessage, inboundBuffer),
		outbound: make(chan outboundMessage, outboundBuffer),
		done:     make(chan struct{}),
	}
}

// run blocks until the client disconnects. Teardown closes the goroutines and
// releases the connection; it never writes attendance.
func (s *session) run() {
	go s.writeLoop()
	go s.workLoop()
	s.readLoop()

	close(s.done)
	s.conn.Close()
}

func (s *session) readLoop() {
	for {
		var msg inboundMessage
		if err := s.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("realtime: read error on %s/%s: %v", s.scope.CompanyName, s.scope.GroupName, err)
			}
			return
		}
		if msg.Event != eventVerifyFace {
			continue
		}
		select {
		case s.inbound <- msg:
		default:
			// The worker is behind; drop this frame, the camera sends
			// another one in a second anyway.
		}
	}
}

func (s *session) workLoop() {
	for {
		select {
		case <-s.done:
			return
		case msg := <-s.inbound:
			result := s.processFrame(msg)
			select {
			case s.outbound <- outboundMessage{Event: eventVerificationResult, Data: result}:
			case <-s.done:
				return
			}
		}
	}
}

func (s *session) writeLoop() {
	for {
		select {
		case <-s.done:
			return
		case out := <-s.outbound:
			s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := s.conn.WriteJSON(out); err != nil {
				return
			}
		}
	}
}

// processFrame runs one frame through the verification pipeline.
func (s *session) processFrame(msg inboundMessage) []ResultItem {
	// The scope is bound at connect; a frame naming another one is answered
	// but never rebinds the session.
	if msg.CompanyName != "" && msg.CompanyName != s.scope.CompanyName {
		return unverified(labelUnknownCompany)
	}
	if msg.GroupName != "" && msg.GroupName != s.scope.GroupName {
		return unverified(labelUnknownGroup)
	}

	// Check the gallery before extracting: a scope with nobody enrolled
	// answers the same whatever the frame shows, and the cached view is far
	// cheaper than an extractor round-trip.
	view, err := s.gw.cache.Load(s.scope.CompanyId, s.scope.GroupId)
	if err != nil {
		log.Printf("realtime: gallery load failed for %s/%s: %v", s.scope.CompanyName, s.scope.GroupName, err)
		return unverified(labelError)
	}
	if len(view.Identities) == 0 {
		return unverified(labelNoEmployees)
	}
	if view.Empty() {
		return unverified(labelNoFaceData)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.gw.extractTimeout)
	defer cancel()

	probe, err := s.gw.extractor.Extract(ctx, msg.ImageData)
	if err != nil {
		// No face and a timed-out extraction both mean this frame yields
		// nothing; distinct from "a face we do not know".
		if !errors.Is(err, extractor.ErrNoFace) && !errors.Is(err, context.DeadlineExceeded) {
			log.Printf("realtime: extraction failed: %v", err)
		}
		return unverified(labelExtractionFailed)
	}

	res := matcher.Match(probe, view, s.gw.threshold)
	if !res.Verified {
		return unverified(labelUnknownPerson)
	}

	if _, _, err := s.gw.ledger.RecordEntryIfAbsent(res.EmployeeId, s.scope.GroupId, s.scope.CompanyId, res.At); err != nil {
		// The store refused the write; report a failure so the client
		// retries rather than believing attendance was taken.
		log.Printf("realtime: attendance write failed for employee %d: %v", res.EmployeeId, err)
		return unverified(labelError)
	}

	d := math.Round(res.Distance*10000) / 10000
	return []ResultItem{{Verified: true, Name: res.Name, Distance: &d}}
}

func unverified(name string) []ResultItem {
	return []ResultItem{{Verified: false, Name: name}}
}
