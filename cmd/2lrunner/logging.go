package main

import (
	"fmt"
	"log"
	"strings"
)

// Log levels, lowest first.
const (
	levelDebug = iota
	levelInfo
	levelWarn
	levelError
)

var levelNames = map[string]int{
	"debug": levelDebug,
	"info":  levelInfo,
	"warn":  levelWarn,
	"error": levelError,
}

// minLevel is the lowest level that reaches the log.
var minLevel = levelInfo

// setLogLevel parses name and makes it the minimum level.
func setLogLevel(name string) error {
	level, ok := levelNames[strings.ToLower(name)]
	if !ok {
		return fmt.Errorf("unknown log level %q (want debug, info, warn or error)", name)
	}
	minLevel = level
	return nil
}

func logf(level int, format string, args ...interface{}) {
	if level >= minLevel {
		log.Printf(format, args...)
	}
}

func debugf(format string, args ...interface{}) { logf(levelDebug, format, args...) }
func infof(format string, args ...interface{})  { logf(levelInfo, format, args...) }
func warnf(format string, args ...interface{})  { logf(levelWarn, format, args...) }
func errorf(format string, args ...interface{}) { logf(levelError, format, args...) }
