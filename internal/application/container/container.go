package container

import (
	"cryptofolio/internal/application/port"
	"cryptofolio/internal/application/service"
)

// Deps are the infrastructure handles the container wires into services.
type Deps struct {
	Feed         port.PriceFeed
	Cache        port.PriceCache
	History      port.PriceHistory
	Ledger       port.LedgerStore
	Portfolios   port.PortfolioRepository
	Transactions port.TransactionRepository
	Alerts       port.AlertRepository

	Symbols          []string
	HistoryQueueSize int
}

type Container struct {
	deps Deps

	ingestService      *service.IngestService
	ledgerService      *service.LedgerService
	pnlService         *service.PNLService
	priceService       *service.PriceService
	portfolioService   *service.PortfolioService
	transactionService *service.TransactionService
	alertService       *service.AlertService
}

func New(deps Deps) *Container {
	return &Container{deps: deps}
}

func (c *Container) IngestService() *service.IngestService {
	if c.ingestService == nil {
		c.ingestService = service.NewIngestService(c.deps.Feed, c.deps.Cache, c.deps.History, c.deps.Symbols, c.deps.HistoryQueueSize)
	}
	return c.ingestService
}

func (c *Container) LedgerService() *service.LedgerService {
	if c.ledgerService == nil {
		c.ledgerService = service.NewLedgerService(c.deps.Ledger)
	}
	return c.ledgerService
}

func (c *Container) PNLService() *service.PNLService {
	if c.pnlService == nil {
		c.pnlService = service.NewPNLService(c.deps.Portfolios, c.deps.History)
	}
	return c.pnlService
}

func (c *Container) PriceService() *service.PriceService {
	if c.priceService == nil {
		c.priceService = service.NewPriceService(c.deps.Cache, c.deps.History)
	}
	return c.priceService
}

func (c *Container) PortfolioService() *service.PortfolioService {
	if c.portfolioService == nil {
		c.portfolioService = service.NewPortfolioService(c.deps.Portfolios)
	}
	return c.portfolioService
}

func (c *Container) TransactionService() *service.TransactionService {
	if c.transactionService == nil {
		c.transactionService = service.NewTransactionService(c.deps.Transactions)
	}
	return c.transactionService
}

func (c *Container) AlertService() *service.AlertService {
	if c.alertService == nil {
		c.alertService = service.NewAlertService(c.deps.Alerts)
	}
	return c.alertService
}
