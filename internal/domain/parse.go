package domain

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

const fieldCount = 3

// Wire keys in the order the controller sends them.
const (
	KeyRain  = "RAIN"
	KeyLevel = "LEVEL"
	KeyServo = "SERVO"
)

var fieldKeys = [fieldCount]string{KeyRain, KeyLevel, KeyServo}

// ParseReading turns one line of the form
//
//	RAIN=<integer>,LEVEL=<text>,SERVO=<ON|OFF|...>
//
// into a Reading. Either every field parses or no Reading is produced.
// Keys are case-sensitive and positional; whitespace around fields and
// values is ignored. Any SERVO value other than "on" (any case) means off.
func ParseReading(line string) (Reading, error) {
	parts := strings.Split(line, ",")
	if len(parts) != fieldCount {
		return Reading{}, &FieldCountError{Got: len(parts)}
	}

	var values [fieldCount]string
	for i, part := range parts {
		v, err := fieldValue(i, part)
		if err != nil {
			return Reading{}, err
		}
		values[i] = v
	}

	rain, err := strconv.Atoi(values[0])
	if err != nil {
		return Reading{}, &NumericFormatError{Value: values[0], Err: err}
	}

	return Reading{
		RainMM:  rain,
		Level:   values[1],
		ServoOn: strings.ToUpper(values[2]) == "ON",
	}, nil
}

func fieldValue(idx int, field string) (string, error) {
	prefix := fieldKeys[idx] + "="
	field = strings.TrimSpace(field)
	if !strings.HasPrefix(field, prefix) {
		return "", &FieldFormatError{Position: idx + 1, Key: fieldKeys[idx]}
	}
	return strings.TrimSpace(field[len(prefix):]), nil
}

// DecodeLine converts raw serial bytes to text, dropping byte sequences that
// are not valid UTF-8, and trims surrounding whitespace.
func DecodeLine(b []byte) string {
	s := string(b)
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	return strings.TrimSpace(s)
}
