package config

import (
	"bufio"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
)

// keyAliases maps short config file keys to their full names.
var keyAliases = map[string]string{
	"storage": "storage.backend",
}

// LoadFile reads a walletkit.conf file of "key = value" lines. Blank lines
// and lines starting with # are skipped, and a value may be quoted. A
// missing file yields no values.
func LoadFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	values := make(map[string]string)
	sc := bufio.NewScanner(f)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("%s:%d: expected key = value", path, n)
		}
		values[strings.TrimSpace(key)] = unquote(strings.TrimSpace(value))
	}
	return values, sc.Err()
}

func unquote(v string) string {
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
		return v[1 : len(v)-1]
	}
	return v
}

// ApplyFileConfig sets the fields of cfg named by the keys in values.
// Keys match the conf tags on Config. Unknown keys are ignored.
func ApplyFileConfig(cfg *Config, values map[string]string) error {
	fields := confFields(reflect.ValueOf(cfg).Elem())
	for key, value := range values {
		if full, ok := keyAliases[key]; ok {
			key = full
		}
		field, ok := fields[key]
		if !ok {
			continue
		}
		if err := setField(field, value); err != nil {
			return fmt.Errorf("config key %q: %w", key, err)
		}
	}
	return nil
}

// confFields indexes the settable fields of v, descending into nested
// structs, by their conf tag.
func confFields(v reflect.Value) map[string]reflect.Value {
	out := make(map[string]reflect.Value)
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := v.Field(i)
		if tag := t.Field(i).Tag.Get("conf"); tag != "" {
			out[tag] = f
			continue
		}
		if f.Kind() == reflect.Struct {
			for k, nested := range confFields(f) {
				out[k] = nested
			}
		}
	}
	return out
}

func setField(f reflect.Value, value string) error {
	switch f.Kind() {
	case reflect.String:
		f.SetString(value)
	case reflect.Bool:
		f.SetBool(parseBool(value))
	case reflect.Uint64, reflect.Uint32:
		n, err := strconv.ParseUint(value, 10, f.Type().Bits())
		if err != nil {
			return err
		}
		f.SetUint(n)
	default:
		return fmt.Errorf("unsupported field kind %s", f.Kind())
	}
	return nil
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "1", "yes", "on":
		return true
	}
	return false
}

type confSection struct {
	title string
	lines []string
}

// WriteDefaultConfig writes a commented walletkit.conf holding the
// defaults for network.
func WriteDefaultConfig(path string, network NetworkType) error {
	def := Default(network)
	sections := []confSection{
		{"Core", []string{
			"# mainnet or testnet. Selects bitcoin cash parameters and the",
			"# default Ethereum network.",
			"network = " + string(network),
			"# datadir = ~/.walletkit",
		}},
		{"Storage", []string{
			"# badger, leveldb, memory or nop",
			"storage.backend = " + def.Storage.Backend,
		}},
		{"Ethereum", []string{
			"# mainnet, goerli or sepolia",
			"eth.network = " + def.Eth.Network,
			"# gwei",
			"eth.gasprice = " + def.Eth.GasPrice,
			"eth.gaslimit = " + strconv.FormatUint(def.Eth.GasLimit, 10),
		}},
		{"Tezos", []string{
			"# mutez per forged byte",
			"xtz.mutezperbyte = " + strconv.FormatUint(def.Tezos.MutezPerByte, 10),
		}},
		{"Logging", []string{
			"log.level = info",
			"# log.file =",
			"log.json = false",
		}},
	}

	var b strings.Builder
	b.WriteString("# WalletKit configuration\n")
	for _, s := range sections {
		fmt.Fprintf(&b, "\n# --- %s ---\n", s.title)
		for _, l := range s.lines {
			b.WriteString(l + "\n")
		}
	}
	return os.WriteFile(path, []byte(b.String()), 0644)
}
