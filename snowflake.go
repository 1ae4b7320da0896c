/************************************************************************************
 *
 * gatecore, a Discord gateway shard core for Go
 *
 * SPDX-License-Identifier: BSD-3-Clause
 *
 ************************************************************************************/

package gatecore

import (
	"encoding/json"
	"strconv"
)

/***********************
 *     Snowflake       *
 ***********************/

// Snowflake is a Discord unique identifier, used by the gateway core only
// for the application id surfaced on Ready and for member-chunk requests.
type Snowflake uint64

var (
	_ json.Marshaler   = (*Snowflake)(nil)
	_ json.Unmarshaler = (*Snowflake)(nil)
)

func (s *Snowflake) UnmarshalJSON(buf []byte) error {
	if len(buf) == 4 && buf[0] == 'n' && buf[1] == 'u' && buf[2] == 'l' && buf[3] == 'l' {
		return nil
	}

	// Discord snowflakes arrive as quoted decimal strings; branchless
	// parsing skips per-digit validation since the gateway is trusted input.
	if len(buf) >= 3 && buf[0] == '"' && buf[len(buf)-1] == '"' {
		str := BytesToString(buf[1 : len(buf)-1])
		*s = Snowflake(parseUint64Branchless(str))
		return nil
	}

	str, err := strconv.Unquote(string(buf))
	if err != nil {
		return err
	}

	id, err := strconv.ParseUint(str, 10, 64)
	if err != nil {
		return err
	}

	*s = Snowflake(id)
	return nil
}

func (s Snowflake) MarshalJSON() ([]byte, error) {
	return []byte(`"` + strconv.FormatUint(uint64(s), 10) + `"`), nil
}

// IsZero reports whether the Snowflake is unset.
func (s Snowflake) IsZero() bool {
	return s == 0
}

// String returns the Snowflake as a decimal string.
func (s Snowflake) String() string {
	return strconv.FormatUint(uint64(s), 10)
}

// ParseSnowflake parses a decimal string into a Snowflake, with full
// validation. Use for ids arriving from outside the gateway connection.
func ParseSnowflake(id string) (Snowflake, error) {
	v, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return 0, err
	}
	return Snowflake(v), nil
}

// MustParseSnowflake parses a decimal string into a Snowflake, panicking on
// error. Use for hardcoded ids in callers and tests.
func MustParseSnowflake(id string) Snowflake {
	s, err := ParseSnowflake(id)
	if err != nil {
		panic(err)
	}
	return s
}
