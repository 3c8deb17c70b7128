package store

import (
	"fmt"
	"strings"
)

func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	return nil
}

func (s *Store) GetAllSettings() ([]Setting, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var settings []Setting
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

func (s *Store) Endpoint() string {
	v, _ := s.GetSetting(KeyEndpoint)
	return strings.TrimSpace(v)
}

func (s *Store) Token() string {
	v, _ := s.GetSetting(KeyToken)
	return strings.TrimSpace(v)
}

// ReportPrefix returns the export file prefix, falling back to
// DefaultReportPrefix when unset.
func (s *Store) ReportPrefix() string {
	v, _ := s.GetSetting(KeyReportPrefix)
	v = strings.TrimSpace(v)
	if v == "" {
		return DefaultReportPrefix
	}
	return v
}

// SeedSetting stores value only if the current value is empty.
func (s *Store) SeedSetting(key, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	cur, err := s.GetSetting(key)
	if err == nil && strings.TrimSpace(cur) != "" {
		return nil
	}
	return s.SetSetting(key, value)
}
