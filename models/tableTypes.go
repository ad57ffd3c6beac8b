package models

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"
)

// columnTypeSpec defines how one column type validates config and cell values.
// The registry is the single place a new column type gets added.
type columnTypeSpec struct {
	ValidateConfig func(config JSONMap) error
	ParseCell      func(value interface{}, config JSONMap) (interface{}, error)
}

var columnTypeRegistry = map[ColumnType]columnTypeSpec{
	ColumnTypeText: {
		ValidateConfig: func(config JSONMap) error {
			if max, ok := configNumber(config, "max_length"); ok && max < 1 {
				return errors.New("max_length must be positive")
			}
			return nil
		},
		ParseCell: func(value interface{}, config JSONMap) (interface{}, error) {
			s, ok := value.(string)
			if !ok {
				return nil, errors.New("expected a string")
			}
			if max, has := configNumber(config, "max_length"); has && float64(len(s)) > max {
				return nil, fmt.Errorf("text exceeds max length %d", int(max))
			}
			return s, nil
		},
	},
	ColumnTypeNumber: {
		ValidateConfig: func(config JSONMap) error {
			min, hasMin := configNumber(config, "min")
			max, hasMax := configNumber(config, "max")
			if hasMin && hasMax && min > max {
				return errors.New("min must not exceed max")
			}
			if precision, ok := configNumber(config, "precision"); ok && (precision < 0 || precision > 10) {
				return errors.New("precision must be between 0 and 10")
			}
			return nil
		},
		ParseCell: func(value interface{}, config JSONMap) (interface{}, error) {
			n, err := cellNumber(value)
			if err != nil {
				return nil, err
			}
			if min, ok := configNumber(config, "min"); ok && n < min {
				return nil, fmt.Errorf("number below minimum %v", min)
			}
			if max, ok := configNumber(config, "max"); ok && n > max {
				return nil, fmt.Errorf("number above maximum %v", max)
			}
			if precision, ok := configNumber(config, "precision"); ok {
				factor := math.Pow(10, precision)
				n = math.Round(n*factor) / factor
			}
			return n, nil
		},
	},
	ColumnTypeBoolean: {
		ParseCell: func(value interface{}, _ JSONMap) (interface{}, error) {
			b, ok := value.(bool)
			if !ok {
				return nil, errors.New("expected true or false")
			}
			return b, nil
		},
	},
	ColumnTypeDate: {
		ParseCell: func(value interface{}, _ JSONMap) (interface{}, error) {
			s, ok := value.(string)
			if !ok {
				return nil, errors.New("expected a date string")
			}
			if _, err := time.Parse("2006-01-02", s); err != nil {
				return nil, errors.New("expected YYYY-MM-DD")
			}
			return s, nil
		},
	},
	ColumnTypeSelect: {
		ValidateConfig: func(config JSONMap) error {
			options := configOptions(config)
			if len(options) == 0 {
				return errors.New("select columns need at least one option")
			}
			return nil
		},
		ParseCell: func(value interface{}, config JSONMap) (interface{}, error) {
			s, ok := value.(string)
			if !ok {
				return nil, errors.New("expected a string")
			}
			for _, option := range configOptions(config) {
				if option == s {
					return s, nil
				}
			}
			return nil, fmt.Errorf("%q is not one of the configured options", s)
		},
	},
	ColumnTypeURL: {
		ParseCell: func(value interface{}, _ JSONMap) (interface{}, error) {
			s, ok := value.(string)
			if !ok {
				return nil, errors.New("expected a string")
			}
			parsed, err := url.Parse(s)
			if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
				return nil, errors.New("expected an http(s) URL")
			}
			return s, nil
		},
	},
	ColumnTypeRating: {
		ValidateConfig: func(config JSONMap) error {
			if max, ok := configNumber(config, "max"); ok && (max < 1 || max > 100) {
				return errors.New("rating max must be between 1 and 100")
			}
			return nil
		},
		ParseCell: func(value interface{}, config JSONMap) (interface{}, error) {
			n, err := cellNumber(value)
			if err != nil {
				return nil, err
			}
			if n != math.Trunc(n) {
				return nil, errors.New("rating must be a whole number")
			}
			max := 5.0
			if m, ok := configNumber(config, "max"); ok {
				max = m
			}
			if n < 0 || n > max {
				return nil, fmt.Errorf("rating must be between 0 and %d", int(max))
			}
			return int(n), nil
		},
	},
}

// ValidateColumnConfig rejects unknown column types and bad per-type config.
func ValidateColumnConfig(columnType ColumnType, config JSONMap) error {
	spec, ok := columnTypeRegistry[columnType]
	if !ok {
		return fmt.Errorf("unknown column type %q", columnType)
	}
	if spec.ValidateConfig != nil {
		return spec.ValidateConfig(config)
	}
	return nil
}

// ParseCellValue normalizes a raw cell value against the column's type and
// config. nil clears the cell and is always allowed.
func ParseCellValue(columnType ColumnType, config JSONMap, value interface{}) (interface{}, error) {
	if value == nil {
		return nil, nil
	}
	spec, ok := columnTypeRegistry[columnType]
	if !ok {
		return nil, fmt.Errorf("unknown column type %q", columnType)
	}
	return spec.ParseCell(value, config)
}

func configNumber(config JSONMap, key string) (float64, bool) {
	if config == nil {
		return 0, false
	}
	raw, ok := config[key]
	if !ok {
		return 0, false
	}
	n, err := cellNumber(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

func configOptions(config JSONMap) []string {
	if config == nil {
		return nil
	}
	raw, ok := config["options"]
	if !ok {
		return nil
	}
	var options []string
	switch v := raw.(type) {
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				options = append(options, strings.TrimSpace(s))
			}
		}
	case []string:
		options = v
	}
	return options
}

func cellNumber(value interface{}) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	default:
		return 0, errors.New("expected a number")
	}
}
