package common

import (
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/spf13/cast"
)

const (
	ENABLED  = "enabled"
	DISABLED = "disabled"
)

var snowflakeNode *snowflake.Node

func init() {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	snowflakeNode = node
}

// UUIDint64 time ordered unique id
func UUIDint64() int64 {
	return snowflakeNode.Generate().Int64()
}

// UUIDString snowflake id in base 10
func UUIDString() string {
	return strconv.FormatInt(UUIDint64(), 10)
}

// IsTruthy reports whether a loosely typed flag value means true.
// Accepts what strconv.ParseBool accepts plus "on" and "yes".
func IsTruthy(v interface{}) bool {
	if s, ok := v.(string); ok {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "on", "yes", "y":
			return true
		}
	}
	return cast.ToBool(v)
}

// IfEmptyStr returns defval when src is blank
func IfEmptyStr(src string, defval string) string {
	if strings.TrimSpace(src) == "" {
		return defval
	}
	return src
}
