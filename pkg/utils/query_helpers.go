package utils

import (
	"strconv"
	"strings"
)

// ParseUint64Slice разбирает "1,2,3" или повторяющиеся параметры запроса.
func ParseUint64Slice(s []string) ([]uint64, error) {
	if len(s) == 0 {
		return nil, nil
	}

	result := make([]uint64, 0, len(s))
	for _, v := range s {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseUint(part, 10, 64)
			if err != nil {
				return nil, err
			}
			result = append(result, id)
		}
	}

	return result, nil
}
