package options

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// schemaConfig mirrors table.DefineSchema's real option target: a set of
// deprecated entry ids plus per-field overrides, with validation deferred
// until the whole option set has been applied.
type schemaConfig struct {
	deprecated map[uint64]bool
	reserved   map[string]int
	lastCall   string
}

func newSchemaConfig() *schemaConfig {
	return &schemaConfig{deprecated: map[uint64]bool{}, reserved: map[string]int{}}
}

func withDeprecated(ids ...uint64) Option[*schemaConfig] {
	return NoError(func(c *schemaConfig) {
		for _, id := range ids {
			c.deprecated[id] = true
		}
		c.lastCall = "withDeprecated"
	})
}

// withReservedSize rejects a non-positive size, the same way
// table.WithFieldReservedSize's caller would reject a nonsensical budget --
// this exercises the fallible New path rather than NoError.
func withReservedSize(field string, n int) Option[*schemaConfig] {
	return New(func(c *schemaConfig) error {
		if n <= 0 {
			return fmt.Errorf("reserved size for %s must be positive, got %d", field, n)
		}
		c.reserved[field] = n
		c.lastCall = "withReservedSize"
		return nil
	})
}

func TestApply_SchemaConfig(t *testing.T) {
	t.Run("applies deprecated ids and reserved sizes in order", func(t *testing.T) {
		cfg := newSchemaConfig()
		err := Apply(cfg,
			withDeprecated(1, 2),
			withReservedSize("Payload", 64),
		)

		require.NoError(t, err)
		require.True(t, cfg.deprecated[1])
		require.True(t, cfg.deprecated[2])
		require.Equal(t, 64, cfg.reserved["Payload"])
		require.Equal(t, "withReservedSize", cfg.lastCall)
	})

	t.Run("rejects a non-positive reserved size and stops applying", func(t *testing.T) {
		cfg := newSchemaConfig()
		err := Apply(cfg,
			withReservedSize("Payload", -1),
			withDeprecated(9),
		)

		require.Error(t, err)
		require.Contains(t, err.Error(), "must be positive")
		require.Empty(t, cfg.deprecated)
	})

	t.Run("empty option list leaves the config untouched", func(t *testing.T) {
		cfg := newSchemaConfig()
		require.NoError(t, Apply(cfg))
		require.Empty(t, cfg.deprecated)
		require.Empty(t, cfg.reserved)
	})
}

// dispatchConfig mirrors an RPC interface's build-once configuration: a
// selector width plus a set of explicit per-method selector overrides.
type dispatchConfig struct {
	selectorWidth int
	overrides     map[string]uint64
}

func newDispatchConfig() *dispatchConfig {
	return &dispatchConfig{selectorWidth: 64, overrides: map[string]uint64{}}
}

func withSelectorWidth(width int) Option[*dispatchConfig] {
	return New(func(c *dispatchConfig) error {
		if width != 32 && width != 64 {
			return fmt.Errorf("selector width must be 32 or 64, got %d", width)
		}
		c.selectorWidth = width
		return nil
	})
}

func withExplicitSelector(method string, selector uint64) Option[*dispatchConfig] {
	return NoError(func(c *dispatchConfig) {
		c.overrides[method] = selector
	})
}

func TestApply_DispatchConfig(t *testing.T) {
	t.Run("configures selector width and explicit overrides", func(t *testing.T) {
		cfg := newDispatchConfig()
		err := Apply(cfg,
			withSelectorWidth(32),
			withExplicitSelector("Ping", 0xABCD),
		)

		require.NoError(t, err)
		require.Equal(t, 32, cfg.selectorWidth)
		require.Equal(t, uint64(0xABCD), cfg.overrides["Ping"])
	})

	t.Run("rejects an invalid selector width", func(t *testing.T) {
		cfg := newDispatchConfig()
		err := Apply(cfg, withSelectorWidth(16))
		require.Error(t, err)
		require.Equal(t, 64, cfg.selectorWidth) // default, unchanged
	})
}

// streamBudgetConfig mirrors the sizing decision behind a bounded stream
// reader/writer: a byte budget plus whether exceeding it should be treated
// as a hard error or silently truncated.
type streamBudgetConfig struct {
	budget      int
	hardLimit   bool
	description string
}

func withBudget(n int) Option[*streamBudgetConfig] {
	return New(func(c *streamBudgetConfig) error {
		if n < 0 {
			return fmt.Errorf("budget cannot be negative, got %d", n)
		}
		c.budget = n
		return nil
	})
}

func withHardLimit() Option[*streamBudgetConfig] {
	return NoError(func(c *streamBudgetConfig) {
		c.hardLimit = true
	})
}

func withDescription(s string) Option[*streamBudgetConfig] {
	return NoError(func(c *streamBudgetConfig) {
		c.description = s
	})
}

func TestApply_StreamBudgetConfig(t *testing.T) {
	t.Run("combines fallible and infallible options", func(t *testing.T) {
		cfg := &streamBudgetConfig{}
		err := Apply(cfg,
			withBudget(4096),
			withHardLimit(),
			withDescription("table entry payload"),
		)

		require.NoError(t, err)
		require.Equal(t, 4096, cfg.budget)
		require.True(t, cfg.hardLimit)
		require.Equal(t, "table entry payload", cfg.description)
	})

	t.Run("rejects a negative budget without applying later options", func(t *testing.T) {
		cfg := &streamBudgetConfig{}
		err := Apply(cfg,
			withBudget(-8),
			withHardLimit(),
		)

		require.Error(t, err)
		require.False(t, cfg.hardLimit)
	})
}

// Exercise the generic machinery directly against a non-struct target, to
// confirm Option[T] doesn't assume T is a pointer-to-struct.
func TestApply_PrimitiveTarget(t *testing.T) {
	var budget int
	opt := NoError(func(n *int) { *n = 128 })

	require.NoError(t, Apply(&budget, opt))
	require.Equal(t, 128, budget)
}

func TestOption_ApplyOrder(t *testing.T) {
	cfg := newSchemaConfig()
	var order []string

	record := func(name string) Option[*schemaConfig] {
		return NoError(func(*schemaConfig) { order = append(order, name) })
	}

	require.NoError(t, Apply(cfg, record("first"), record("second"), record("third")))
	require.Equal(t, []string{"first", "second", "third"}, order)
}
