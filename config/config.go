package config

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/ethereum/go-ethereum/common"

	"github.com/optakt/lever/b"
	"github.com/optakt/lever/market"
	"github.com/optakt/lever/position"
	"github.com/optakt/lever/token"
	"github.com/optakt/lever/vault"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config holds the parameters of a simulated vault deployment. Ratios, rates
// and amounts are decimal strings; amounts are in whole tokens.
type Config struct {
	Vault   VaultConfig   `toml:"Vault"`
	Market  MarketConfig  `toml:"Market"`
	Gateway GatewayConfig `toml:"Gateway"`
}

type VaultConfig struct {
	Shares         string `toml:"Shares"`
	Target         string `toml:"Target"`
	MaxRatio       string `toml:"MaxRatio"`
	PerformanceFee string `toml:"PerformanceFee"`
	FeeRecipient   string `toml:"FeeRecipient"`
	MaxTotalValue  string `toml:"MaxTotalValue"`
	DeleverBuffer  uint64 `toml:"DeleverBuffer"`
}

type MarketConfig struct {
	LLTV       string `toml:"LLTV"`
	BorrowRate string `toml:"BorrowRate"`
	Liquidity  string `toml:"Liquidity"`
}

type GatewayConfig struct {
	Base          string `toml:"Base"`
	Collateral    string `toml:"Collateral"`
	PoolReserve   string `toml:"PoolReserve"`
	SwapFee       uint64 `toml:"SwapFee"`
	WrapperAssets string `toml:"WrapperAssets"`
	StablePrice   string `toml:"StablePrice"`
}

// Default returns a deployment resembling a USDC vault over sUSDe.
func Default() *Config {
	return &Config{
		Vault: VaultConfig{
			Shares:         "lvUSDC",
			Target:         "0.75",
			MaxRatio:       "0.9",
			PerformanceFee: "0.1",
			FeeRecipient:   "0x000000000000000000000000000000000000fee0",
			MaxTotalValue:  "0",
			DeleverBuffer:  vault.DefaultDeleverBuffer,
		},
		Market: MarketConfig{
			LLTV:       "0.86",
			BorrowRate: "0.08",
			Liquidity:  "100000000",
		},
		Gateway: GatewayConfig{
			Base:          "USDC",
			Collateral:    "sUSDe",
			PoolReserve:   "500000000",
			SwapFee:       1,
			WrapperAssets: "1000000000",
			StablePrice:   "1",
		},
	}
}

// Load loads the configuration from the given path. A missing file yields
// the default configuration; fields absent from the file keep their
// defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("could not decode config file: %w", err)
	}

	undecoded := meta.Undecoded()
	if len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown config key %s: %w", undecoded[0], ErrInvalidConfig)
	}

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that every value parses and lies in its allowed range.
func (c *Config) Validate() error {

	target, err := position.ParseLeverage(c.Vault.Target)
	if err != nil {
		return fmt.Errorf("target: %s: %w", err, ErrInvalidConfig)
	}

	maxRatio, err := wadBetween("max ratio", c.Vault.MaxRatio, b.WAD)
	if err != nil {
		return err
	}
	if target.Ratio().Cmp(maxRatio) >= 0 {
		return fmt.Errorf("target %s not below max ratio: %w", target, ErrInvalidConfig)
	}

	fee, err := b.ParseWad(c.Vault.PerformanceFee)
	if err != nil {
		return fmt.Errorf("performance fee: %s: %w", err, ErrInvalidConfig)
	}
	if fee.Cmp(vault.MaxPerformanceFee) > 0 {
		return fmt.Errorf("performance fee above %s: %w", b.FormatWad(vault.MaxPerformanceFee), ErrInvalidConfig)
	}

	if !common.IsHexAddress(c.Vault.FeeRecipient) || common.HexToAddress(c.Vault.FeeRecipient) == (common.Address{}) {
		return fmt.Errorf("fee recipient %q: %w", c.Vault.FeeRecipient, ErrInvalidConfig)
	}

	lltv, err := wadBetween("liquidation threshold", c.Market.LLTV, b.WAD)
	if err != nil {
		return err
	}
	if target.Ratio().Cmp(lltv) >= 0 {
		return fmt.Errorf("target %s not below liquidation threshold: %w", target, ErrInvalidConfig)
	}

	for name, value := range map[string]string{
		"max total value": c.Vault.MaxTotalValue,
		"borrow rate":     c.Market.BorrowRate,
		"liquidity":       c.Market.Liquidity,
		"pool reserve":    c.Gateway.PoolReserve,
		"wrapper assets":  c.Gateway.WrapperAssets,
	} {
		_, err = b.ParseWad(value)
		if err != nil {
			return fmt.Errorf("%s: %s: %w", name, err, ErrInvalidConfig)
		}
	}

	_, err = wadBetween("stable price", c.Gateway.StablePrice, nil)
	if err != nil {
		return err
	}

	if c.Gateway.SwapFee >= 10_000 {
		return fmt.Errorf("swap fee of %d bps: %w", c.Gateway.SwapFee, ErrInvalidConfig)
	}

	if c.Vault.Shares == "" || c.Gateway.Base == "" || c.Gateway.Collateral == "" || c.Gateway.Base == c.Gateway.Collateral {
		return fmt.Errorf("asset names must be set and distinct: %w", ErrInvalidConfig)
	}

	return nil
}

// VaultParams converts the vault section. It assumes a validated config.
func (c *Config) VaultParams() vault.Params {
	target, _ := position.ParseLeverage(c.Vault.Target)
	return vault.Params{
		Shares:         token.Asset(c.Vault.Shares),
		Target:         target,
		MaxRatio:       wadOrZero(c.Vault.MaxRatio),
		PerformanceFee: wadOrZero(c.Vault.PerformanceFee),
		FeeRecipient:   common.HexToAddress(c.Vault.FeeRecipient),
		MaxTotalValue:  wadOrZero(c.Vault.MaxTotalValue),
		DeleverBuffer:  c.Vault.DeleverBuffer,
	}
}

// MarketParams converts the market section, reading time from clock.
func (c *Config) MarketParams(clock func() time.Time) market.Params {
	return market.Params{
		LLTV:  wadOrZero(c.Market.LLTV),
		Rate:  wadOrZero(c.Market.BorrowRate),
		Clock: clock,
	}
}

func (c *Config) Liquidity() *big.Int {
	return wadOrZero(c.Market.Liquidity)
}

func (c *Config) PoolReserve() *big.Int {
	return wadOrZero(c.Gateway.PoolReserve)
}

func (c *Config) WrapperAssets() *big.Int {
	return wadOrZero(c.Gateway.WrapperAssets)
}

// StablePrice is the oracle price of the stable asset in the base asset,
// used until the feed provides one.
func (c *Config) StablePrice() *big.Int {
	return wadOrZero(c.Gateway.StablePrice)
}

// wadBetween parses a strictly positive wad, below limit when one is set.
func wadBetween(name string, value string, limit *big.Int) (*big.Int, error) {
	x, err := b.ParseWad(value)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", name, err, ErrInvalidConfig)
	}
	if x.Sign() == 0 || (limit != nil && x.Cmp(limit) >= 0) {
		return nil, fmt.Errorf("%s %s out of range: %w", name, value, ErrInvalidConfig)
	}
	return x, nil
}

func wadOrZero(value string) *big.Int {
	x, err := b.ParseWad(value)
	if err != nil {
		return big.NewInt(0)
	}
	return x
}
