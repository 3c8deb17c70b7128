package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/shiftr/internal/client"
	"github.com/sadopc/shiftr/internal/store"
	"github.com/sadopc/shiftr/internal/tracker"
)

const pingTimeout = 15 * time.Second

type settingsModel struct {
	store   *store.Store
	tracker *tracker.Tracker
	width   int
	height  int

	settings   []store.Setting
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	endpoint     *string
	token        *string
	reportPrefix *string
}

func newSettingsModel(s *store.Store, tr *tracker.Tracker) settingsModel {
	ep, tok, prefix := "", "", ""
	m := settingsModel{
		store:        s,
		tracker:      tr,
		endpoint:     &ep,
		token:        &tok,
		reportPrefix: &prefix,
	}
	m.settings, _ = s.GetAllSettings()
	return m
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings []store.Setting
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		settings, _ := s.store.GetAllSettings()
		return settingsDataMsg{settings: settings}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter):
			return s.showForm()
		case key.Matches(msg, keys.Ping):
			return s, s.ping()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.endpoint = s.store.Endpoint()
	*s.token = s.store.Token()
	*s.reportPrefix = s.store.ReportPrefix()

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Endpoint URL").
				Description("Must end in "+client.EndpointSuffix).
				Value(s.endpoint).
				Validate(validEndpoint),
			huh.NewInput().Title("Token").
				EchoMode(huh.EchoModePassword).
				Value(s.token),
		).Title("Sync"),
		huh.NewGroup(
			huh.NewInput().Title("Report file prefix").Value(s.reportPrefix),
		).Title("Export"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

// validEndpoint allows a blank endpoint, which leaves sync switched off.
func validEndpoint(v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	if err := client.New(v, "-").Validate(); errors.Is(err, client.ErrInvalidEndpoint) {
		return fmt.Errorf("must be a URL ending in %s", client.EndpointSuffix)
	}
	return nil
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		if err := s.saveSettings(); err != nil {
			return s, errorStatus(err)
		}
		return s, tea.Batch(s.refresh(), func() tea.Msg {
			return statusMsg{text: "Settings saved"}
		})
	}

	return s, cmd
}

func (s settingsModel) saveSettings() error {
	for k, v := range map[string]string{
		store.KeyEndpoint:     *s.endpoint,
		store.KeyToken:        *s.token,
		store.KeyReportPrefix: *s.reportPrefix,
	} {
		if err := s.store.SetSetting(k, strings.TrimSpace(v)); err != nil {
			return err
		}
	}
	return nil
}

func (s settingsModel) ping() tea.Cmd {
	tr := s.tracker
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
		defer cancel()
		if err := tr.Ping(ctx); err != nil {
			return statusMsg{text: fmt.Sprintf("Connection failed: %v", err), isError: true}
		}
		return statusMsg{text: "Connection OK"}
	}
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Settings")

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	rows := []string{title, ""}
	for _, setting := range s.settings {
		label := lipgloss.NewStyle().Width(24).Render(setting.Key)
		value := highlightStyle.Render(formatSettingValue(setting.Key, setting.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("Press enter to edit settings, p to test the connection"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatSettingValue(k, v string) string {
	v = strings.TrimSpace(v)
	switch k {
	case store.KeyToken:
		if v == "" {
			return "(not set)"
		}
		return strings.Repeat("•", min(len(v), 12))
	case store.KeyEndpoint:
		if v == "" {
			return "(sync off)"
		}
	case store.KeyReportPrefix:
		if v == "" {
			return store.DefaultReportPrefix
		}
	}
	return v
}
