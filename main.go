package main

import (
	"math/big"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/optakt/lever/b"
	"github.com/optakt/lever/config"
	"github.com/optakt/lever/feed"
	"github.com/optakt/lever/gateway"
	"github.com/optakt/lever/journal"
	"github.com/optakt/lever/market"
	"github.com/optakt/lever/position"
	"github.com/optakt/lever/token"
	"github.com/optakt/lever/vault"
	"github.com/optakt/lever/write"
)

var (
	vaultAddress     = common.HexToAddress("0x000000000000000000000000000000000000a001")
	marketAddress    = common.HexToAddress("0x000000000000000000000000000000000000a002")
	gatewayAddress   = common.HexToAddress("0x000000000000000000000000000000000000a003")
	depositorAddress = common.HexToAddress("0x000000000000000000000000000000000000d001")
)

func main() {

	var (
		configPath string
		feedPath   string
		input      string
		target     string
		drift      string
		logLevel   string

		influxURL    string
		influxToken  string
		influxOrg    string
		influxBucket string
	)

	pflag.StringVarP(&configPath, "config", "c", "lever.toml", "path to the vault configuration file")
	pflag.StringVarP(&feedPath, "feed", "f", "feed.csv", "path to the daily market observations")
	pflag.StringVarP(&input, "input", "i", "10000", "base asset amount deposited on the first day")
	pflag.StringVarP(&target, "target", "t", "", "target leverage overriding the configuration (\"idle\" or a ratio)")
	pflag.StringVar(&drift, "drift", "0.01", "ratio drift from the target at which we rebalance")
	pflag.StringVarP(&logLevel, "log-level", "l", "info", "log output level")

	pflag.StringVar(&influxURL, "influx-url", "", "InfluxDB server URL; points are not written when empty")
	pflag.StringVar(&influxToken, "influx-token", "", "InfluxDB authentication token")
	pflag.StringVar(&influxOrg, "influx-org", "optakt", "InfluxDB organization")
	pflag.StringVar(&influxBucket, "influx-bucket", "lever", "InfluxDB bucket")

	pflag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		log.Fatal().Err(err).Str("level", logLevel).Msg("invalid log level")
	}
	log = log.Level(level)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", configPath).Msg("could not load configuration")
	}
	if target != "" {
		cfg.Vault.Target = target
		err = cfg.Validate()
		if err != nil {
			log.Fatal().Err(err).Str("target", target).Msg("invalid target override")
		}
	}

	amount, err := b.ParseWad(input)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid input amount")
	}
	threshold, err := b.ParseWad(drift)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid drift")
	}

	observations, err := feed.Load(feedPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", feedPath).Msg("could not load feed")
	}
	days := observations.Days()
	first, err := observations.Observation(days[0])
	if err != nil {
		log.Fatal().Err(err).Msg("could not read first observation")
	}

	now := days[0]
	clock := func() time.Time {
		return now
	}

	base := token.Asset(cfg.Gateway.Base)
	collateral := token.Asset(cfg.Gateway.Collateral)

	j := journal.New()
	book := token.NewBook(j)

	pool := gateway.NewPool(j, cfg.PoolReserve(), cfg.PoolReserve(), cfg.Gateway.SwapFee)
	wrapper := gateway.NewWrapper(j)
	wrapper.Deposit(cfg.WrapperAssets())
	wrapper.SetExchangeRate(first.ExchangeRate)

	gw, err := gateway.New(log, book, gatewayAddress, base, collateral, pool, wrapper)
	if err != nil {
		log.Fatal().Err(err).Msg("could not create gateway")
	}
	gw.SetPrice(cfg.StablePrice())
	if first.StablePrice != nil {
		gw.SetPrice(first.StablePrice)
	}

	marketParams := cfg.MarketParams(clock)
	marketParams.Rate = first.BorrowRate
	mkt := market.New(log, j, book, marketAddress, base, collateral, gw, marketParams)
	err = mkt.Fund(cfg.Liquidity())
	if err != nil {
		log.Fatal().Err(err).Msg("could not fund market")
	}

	params := cfg.VaultParams()
	v, err := vault.New(log, j, book, vaultAddress, mkt, gw, params)
	if err != nil {
		log.Fatal().Err(err).Msg("could not create vault")
	}

	var outbound api.WriteAPI
	if influxURL != "" {
		client := influxdb2.NewClient(influxURL, influxToken)
		defer client.Close()
		outbound = client.WriteAPI(influxOrg, influxBucket)
		defer outbound.Flush()
		go func() {
			for err := range outbound.Errors() {
				log.Warn().Err(err).Msg("could not write point")
			}
		}()
	}

	err = book.Mint(base, depositorAddress, amount)
	if err != nil {
		log.Fatal().Err(err).Msg("could not fund depositor")
	}
	shares, err := v.Deposit(amount, depositorAddress, depositorAddress)
	if err != nil {
		log.Fatal().Err(err).Msg("could not deposit")
	}

	log.Info().
		Str("input", b.FormatWad(amount)).
		Str("shares", b.FormatWad(shares)).
		Str("target", params.Target.String()).
		Time("start", days[0]).
		Time("end", days[len(days)-1]).
		Msg("backtest started")

	rebalances := 0
	for _, day := range days {

		now = day
		observation, err := observations.Observation(day)
		if err != nil {
			log.Fatal().Err(err).Msg("could not read observation")
		}

		mkt.SetRate(observation.BorrowRate)
		wrapper.SetExchangeRate(observation.ExchangeRate)
		if observation.StablePrice != nil {
			gw.SetPrice(observation.StablePrice)
		}

		snapshot := v.CurrentPosition()
		if needsRebalance(snapshot, params.Target, threshold) {
			err = v.Rebalance(params.Target)
			if err != nil {
				log.Warn().Err(err).Time("day", day).Msg("could not rebalance")
			} else {
				rebalances++
			}
			snapshot = v.CurrentPosition()
		}

		if !v.IsHealthy() {
			log.Warn().Time("day", day).Msg("vault insolvent")
		}

		log.Debug().
			Time("day", day).
			Str("nav", b.FormatWad(snapshot.NAV)).
			Str("ratio", b.FormatWad(snapshot.Ratio)).
			Str("share", b.FormatWad(snapshot.ValuePerShare)).
			Msg("day processed")

		if outbound != nil {
			write.VaultPoint(day, amount, snapshot, outbound)
			write.MarketPoint(day, observation.ExchangeRate, observation.BorrowRate, gw.Price(), mkt.Index(), mkt.TotalBorrowed(), outbound)
		}
	}

	realized, err := v.Redeem(v.BalanceOf(depositorAddress), depositorAddress, depositorAddress)
	if err != nil {
		log.Fatal().Err(err).Msg("could not redeem")
	}

	log.Info().
		Str("realized", b.FormatWad(realized)).
		Str("change", b.FormatWad(big.NewInt(0).Sub(realized, amount))).
		Int("days", len(days)).
		Int("rebalances", rebalances).
		Msg("backtest completed")
}

// needsRebalance reports whether the position drifted from the target by
// more than threshold, or holds assets a non-leveraged target would not.
func needsRebalance(snapshot vault.Snapshot, target position.Leverage, threshold *big.Int) bool {

	switch target.Kind() {
	case position.KindIdle:
		return !snapshot.Position.IsEmpty()
	case position.KindUnleveraged:
		return snapshot.Position.DebtShares.Sign() > 0 || snapshot.Idle.Sign() > 0
	}

	diff := big.NewInt(0).Sub(snapshot.Ratio, target.Ratio())
	return diff.Abs(diff).Cmp(threshold) > 0
}
