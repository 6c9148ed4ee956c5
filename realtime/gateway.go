// Package realtime owns the streaming verification sessions. Each connected
// camera client gets one session bound to a (company, group) scope; frames go
// through extract -> match -> record-entry and the result is written back to
// the originating session only.
package realtime

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"FACEGATE/extractor"
	"FACEGATE/gallery"
	"FACEGATE/ledger"
)

// Result labels the kiosk client displays. They match the reference client.
const (
	labelUnknownCompany   = "Unknown Company"
	labelUnknownGroup     = "Unknown Group"
	labelNoEmployees      = "No employees in group"
	labelNoFaceData       = "No face data"
	labelExtractionFailed = "Could not extract features"
	labelUnknownPerson    = "Unknown Person"
	labelError            = "Error"
)

// Gateway upgrades websocket connections and runs one session per client.
type Gateway struct {
	cache     *gallery.Cache
	extractor extractor.Extractor
	ledger    *ledger.Ledger
	scopes    ScopeResolver
	threshold float64

	// A frame whose extraction exceeds this deadline is dropped; the session
	// continues with the next frame.
	extractTimeout time.Duration

	upgrader websocket.Upgrader
}

func NewGateway(cache *gallery.Cache, ex extractor.Extractor, led *ledger.Ledger, scopes ScopeResolver, threshold float64) *Gateway {
	return &Gateway{
		cache:          cache,
		extractor:      ex,
		ledger:         led,
		scopes:         scopes,
		threshold:      threshold,
		extractTimeout: 5 * time.Second,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1 << 20, // frames carry base64 camera images
			WriteBufferSize: 4096,
			// The kiosk page is served cross-origin in development.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// HandleWS is the gin handler for GET /ws/:companyName/:groupName. The scope
// comes from the route and is bound before any frame is processed.
func (g *Gateway) HandleWS(c *gin.Context) {
	conn, err := g.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		log.Printf("realtime: upgrade failed: %v", err)
		return
	}

	scope, err := g.scopes.Resolve(c.Param("companyName"), c.Param("groupName"))
	if err != nil {
		label := labelError
		switch err {
		case ErrUnknownCompany:
			label = labelUnknownCompany
		case ErrUnknownGroup:
			label = labelUnknownGroup
		default:
			log.Printf("realtime: scope resolve failed: %v", err)
		}
		conn.WriteJSON(outboundMessage{
			Event: eventVerificationResult,
			Data:  []ResultItem{{Verified: false, Name: label}},
		})
		conn.Close()
		return
	}

	log.Printf("realtime: client connected to %s/%s", scope.CompanyName, scope.GroupName)
	s := newSession(g, conn, scope)
	s.run()
	log.Printf("realtime: client disconnected from %s/%s", scope.CompanyName, scope.GroupName)
}
