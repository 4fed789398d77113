// Package broadcast publishes one JSON message per live move to a NATS
// subject, so an external viewer can follow a running tournament without
// touching the orchestrator's internal state.
package broadcast

import (
	"encoding/json"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"tourney/internal/runner"
)

// LiveRecord is one move published to the broadcast subject.
type LiveRecord struct {
	GameNo        int    `json:"game_no"`
	Ply           int    `json:"ply"`
	Move          string `json:"move"`
	WhiteEngineID int    `json:"white_engine_id"`
	BlackEngineID int    `json:"black_engine_id"`
	WhiteToMove   bool   `json:"white_to_move"`
	PairingID     string `json:"pairing_id"`
}

// Publisher publishes live-record updates to one NATS subject.
type Publisher struct {
	nc      *nats.Conn
	subject string
	log     zerolog.Logger
}

// Connect dials url and returns a Publisher bound to subject.
func Connect(url, subject string, log zerolog.Logger) (*Publisher, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, err
	}
	return &Publisher{nc: nc, subject: subject, log: log}, nil
}

// Publish implements orchestrator.BroadcastSink.
func (p *Publisher) Publish(job runner.Job, gameNo, ply int, move string, whiteToMove bool) {
	rec := LiveRecord{
		GameNo:        gameNo,
		Ply:           ply,
		Move:          move,
		WhiteEngineID: job.Fixture.WhiteEngineID,
		BlackEngineID: job.Fixture.BlackEngineID,
		WhiteToMove:   whiteToMove,
		PairingID:     job.Fixture.PairingID,
	}
	p.send(rec)
}

func (p *Publisher) send(rec LiveRecord) {
	b, err := json.Marshal(rec)
	if err != nil {
		p.log.Warn().Err(err).Msg("broadcast: failed to marshal live record")
		return
	}
	if err := p.nc.Publish(p.subject, b); err != nil {
		p.log.Warn().Err(err).Msg("broadcast: failed to publish live record")
	}
}

// Close drains and closes the underlying connection.
func (p *Publisher) Close() {
	p.nc.Close()
}
