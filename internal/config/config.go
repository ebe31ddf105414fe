// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rovshanmuradov/launchpad/internal/utils/logger"
	"github.com/rovshanmuradov/launchpad/pkg/bondingcurve"
	"github.com/rovshanmuradov/launchpad/pkg/rewards"
	"github.com/spf13/viper"
)

// EnvPrefix: префикс переменных окружения, например LAUNCHPAD_CURVE_GROWTH_FACTOR
const EnvPrefix = "LAUNCHPAD"

type Config struct {
	Curve   bondingcurve.Config `mapstructure:"curve"`
	Rewards RewardsConfig       `mapstructure:"rewards"`
	Service ServiceConfig       `mapstructure:"service"`
	Log     logger.Config       `mapstructure:"log"`
}

type RewardsConfig struct {
	Tiers      []rewards.Tier      `mapstructure:"tiers"`
	Milestones []rewards.Milestone `mapstructure:"milestones"`
}

// ServiceConfig управляет повторами при конфликтах версий и шиной событий
type ServiceConfig struct {
	MaxRetries      int           `mapstructure:"max_retries"`
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
	RetryWindow     time.Duration `mapstructure:"retry_window"`
	EventBuffer     int           `mapstructure:"event_buffer"`
	ReplayWorkers   int           `mapstructure:"replay_workers"`
}

const (
	DefaultMaxRetries      = 5
	DefaultInitialInterval = 5 * time.Millisecond
	DefaultMaxInterval     = 200 * time.Millisecond
	DefaultRetryWindow     = 2 * time.Second
	DefaultEventBuffer     = 256
	DefaultReplayWorkers   = 4
)

// DefaultServiceConfig возвращает параметры сервиса по умолчанию
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		MaxRetries:      DefaultMaxRetries,
		InitialInterval: DefaultInitialInterval,
		MaxInterval:     DefaultMaxInterval,
		RetryWindow:     DefaultRetryWindow,
		EventBuffer:     DefaultEventBuffer,
		ReplayWorkers:   DefaultReplayWorkers,
	}
}

// Default собирает конфигурацию целиком из значений по умолчанию
func Default() *Config {
	return &Config{
		Curve: bondingcurve.DefaultConfig(),
		Rewards: RewardsConfig{
			Tiers:      rewards.DefaultTiers(),
			Milestones: rewards.DefaultMilestones(),
		},
		Service: DefaultServiceConfig(),
		Log:     *logger.DefaultConfig(),
	}
}

// LoadConfig читает JSON-файл, накладывает переменные окружения и проверяет результат.
// Пустой path означает конфигурацию по умолчанию плюс окружение.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := Default()

	defaults := map[string]interface{}{
		"curve.initial_price":       def.Curve.InitialPrice,
		"curve.total_supply":        def.Curve.TotalSupply,
		"curve.growth_factor":       def.Curve.GrowthFactor,
		"curve.platform_fee_rate":   def.Curve.PlatformFeeRate,
		"curve.creator_fee_rate":    def.Curve.CreatorFeeRate,
		"curve.total_fee_rate":      def.Curve.TotalFeeRate,
		"curve.gross_raise_target":  def.Curve.GrossRaiseTarget,
		"curve.bonding_curve_split": def.Curve.BondingCurveSplit,
		"curve.liquidity_split":     def.Curve.LiquiditySplit,

		"rewards.tiers":      tierMaps(def.Rewards.Tiers),
		"rewards.milestones": milestoneMaps(def.Rewards.Milestones),

		"service.max_retries":      def.Service.MaxRetries,
		"service.initial_interval": def.Service.InitialInterval,
		"service.max_interval":     def.Service.MaxInterval,
		"service.retry_window":     def.Service.RetryWindow,
		"service.event_buffer":     def.Service.EventBuffer,
		"service.replay_workers":   def.Service.ReplayWorkers,

		"log.file":        def.Log.LogFile,
		"log.max_size":    def.Log.MaxSize,
		"log.max_age":     def.Log.MaxAge,
		"log.max_backups": def.Log.MaxBackups,
		"log.compress":    def.Log.Compress,
		"log.development": def.Log.Development,
		"log.console":     def.Log.Console,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

func tierMaps(tiers []rewards.Tier) []map[string]interface{} {
	out := make([]map[string]interface{}, len(tiers))
	for i, t := range tiers {
		out[i] = map[string]interface{}{
			"name":            t.Name,
			"required_volume": t.RequiredVolume,
			"multiplier":      t.Multiplier,
		}
	}
	return out
}

func milestoneMaps(ms []rewards.Milestone) []map[string]interface{} {
	out := make([]map[string]interface{}, len(ms))
	for i, m := range ms {
		out[i] = map[string]interface{}{"name": m.Name, "volume": m.Volume}
	}
	return out
}

// Validate проверяет все секции
func (c *Config) Validate() error {
	if err := c.Curve.Validate(); err != nil {
		return fmt.Errorf("curve: %w", err)
	}
	if _, err := c.ToRewardPolicy(); err != nil {
		return fmt.Errorf("rewards: %w", err)
	}
	return c.Service.Validate()
}

// Validate проверяет параметры повторов и воркеров
func (s ServiceConfig) Validate() error {
	if s.MaxRetries < 0 {
		return errors.New("invalid service.max_retries")
	}
	if s.InitialInterval <= 0 {
		return errors.New("invalid service.initial_interval")
	}
	if s.MaxInterval < s.InitialInterval {
		return errors.New("service.max_interval must not be below initial_interval")
	}
	if s.RetryWindow <= 0 {
		return errors.New("invalid service.retry_window")
	}
	if s.EventBuffer <= 0 {
		return errors.New("invalid service.event_buffer")
	}
	if s.ReplayWorkers <= 0 {
		return errors.New("invalid service.replay_workers")
	}
	return nil
}

// ToCurveConfig возвращает готовую кривую
func (c *Config) ToCurveConfig() (bondingcurve.Curve, error) {
	return bondingcurve.New(c.Curve)
}

// ToRewardPolicy собирает политику вознаграждений поверх кривой из этой же конфигурации
func (c *Config) ToRewardPolicy() (rewards.Policy, error) {
	curve, err := c.ToCurveConfig()
	if err != nil {
		return rewards.Policy{}, err
	}
	return rewards.NewPolicy(curve, c.Rewards.Tiers, c.Rewards.Milestones)
}
