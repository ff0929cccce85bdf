// Package handlers implements the gateway's HTTP surface: fax
// submission and retrieval, inbound listing, provider webhook
// ingress, internal PBX hooks, and API key administration.
package handlers

import (
	"github.com/faxbot/faxbot/config"
	"github.com/faxbot/faxbot/internal/apikeys"
	"github.com/faxbot/faxbot/internal/audit"
	"github.com/faxbot/faxbot/internal/database"
	"github.com/faxbot/faxbot/internal/docproc"
	"github.com/faxbot/faxbot/internal/inbound"
	"github.com/faxbot/faxbot/internal/jobs"
	"github.com/faxbot/faxbot/internal/provider/phaxio"
	"github.com/faxbot/faxbot/internal/provider/sinch"
	"github.com/faxbot/faxbot/internal/provider/sip"
	"github.com/faxbot/faxbot/internal/storage"
	"github.com/faxbot/faxbot/internal/webhook"
)

// Deps bundles every dependency the handler constructors need. A
// single struct keeps cmd/faxbotd's wiring in one place instead of
// threading a dozen constructor arguments through routes.go.
type Deps struct {
	Cfg         *config.Config
	Jobs        *jobs.Service
	JobRepo     *database.JobRepository
	Inbound     *inbound.Pipeline
	InboundRepo *database.InboundRepository
	Mailboxes   *database.MailboxRepository
	Dedup       *database.DedupRepository
	APIKeys     *apikeys.Service
	Webhooks    *webhook.Ingress
	Store       storage.Provider
	Proc        *docproc.Processor
	Phaxio      *phaxio.Provider
	Sinch       *sinch.Provider
	SIP         *sip.Provider
	Audit       *audit.Recorder
}
