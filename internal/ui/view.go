package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ashfall-game/ashfall/internal/engine"
)

func (m model) View() string {
	if !m.ready {
		return "loading..."
	}
	switch m.view {
	case viewLogin:
		return m.renderLogin()
	case viewMenu:
		return m.renderMenu()
	case viewCreate:
		return m.renderCreate()
	case viewAdventure:
		return m.renderAdventure()
	case viewSheet:
		return m.renderSheet()
	case viewQuests:
		return m.renderQuests()
	case viewSettings:
		return m.renderSettings()
	case viewHelp:
		return m.renderHelp()
	}
	return ""
}

func (m model) renderLogin() string {
	var b strings.Builder
	b.WriteString(m.styles.title.Render("ASHFALL") + "\n")
	b.WriteString(m.styles.muted.Render("a wasteland survival terminal") + "\n\n")
	b.WriteString(m.styles.label.Render("Username") + "\n" + m.userInput.View() + "\n")
	b.WriteString(m.styles.label.Render("Password") + "\n" + m.passInput.View() + "\n\n")
	b.WriteString(m.styles.muted.Render("enter: login   ctrl+r: register   ctrl+g: wander in as guest") + "\n")
	if m.errMsg != "" {
		b.WriteString("\n" + m.styles.danger.Render(m.errMsg) + "\n")
	}
	return m.styles.box.Render(b.String())
}

func (m model) renderMenu() string {
	var b strings.Builder
	b.WriteString(m.styles.title.Render("ASHFALL") + "\n\n")
	resume := "1) resume"
	if m.pipe == nil {
		resume = m.styles.muted.Render("1) resume (no character)")
	}
	b.WriteString(resume + "\n")
	b.WriteString("2) new character\n")
	b.WriteString("3) settings\n")
	b.WriteString("4) help\n")
	b.WriteString("5) quit\n")
	if m.notice != "" {
		b.WriteString("\n" + m.styles.warn.Render(m.notice) + "\n")
	}
	return m.styles.box.Render(b.String())
}

func (m model) renderCreate() string {
	var b strings.Builder
	b.WriteString(m.styles.title.Render("NEW WANDERER") + "\n\n")
	b.WriteString(m.styles.label.Render("Name") + "\n" + m.nameInput.View() + "\n")
	b.WriteString(m.styles.label.Render("Gender") + " " + m.styles.accent.Render(genders[m.genderIdx]) + m.styles.muted.Render("  (ctrl+g to cycle)") + "\n\n")
	b.WriteString(m.styles.muted.Render("enter: step into the wasteland   esc: back") + "\n")
	if m.errMsg != "" {
		b.WriteString("\n" + m.styles.danger.Render(m.errMsg) + "\n")
	}
	if m.notice != "" {
		b.WriteString("\n" + m.styles.warn.Render(m.notice) + "\n")
	}
	return m.styles.box.Render(b.String())
}

func (m model) statusLine() string {
	st := m.snap
	ap := fmt.Sprintf("AP %d/%d", st.AP, engine.PolicyFor(m.sess.Tier).MaxAP)
	if engine.PolicyFor(m.sess.Tier).Unlimited {
		ap = "AP ∞"
	}
	parts := []string{
		m.styles.accent.Render(st.Player.Name),
		fmt.Sprintf("HP %d/%d", st.Player.Health, st.Player.MaxHealth),
		ap,
		fmt.Sprintf("%d caps", st.Player.Caps),
		st.Location,
		fmt.Sprintf("%d  %s", st.CurrentYear, st.ClockString()),
	}
	return m.styles.label.Render(strings.Join(parts, "  |  "))
}

func (m model) renderAdventure() string {
	var b strings.Builder
	b.WriteString(m.statusLine() + "\n")
	b.WriteString(m.vp.View() + "\n")
	if m.busy {
		b.WriteString(m.spin.View() + m.styles.muted.Render(" the wasteland considers...") + "\n")
	} else {
		b.WriteString(m.actInput.View() + "\n")
	}
	hint := "enter: act   ctrl+s: sheet   ctrl+q: quests   esc: menu"
	if m.errMsg != "" {
		b.WriteString(m.styles.danger.Render(m.errMsg) + "\n")
	} else {
		b.WriteString(m.styles.muted.Render(hint) + "\n")
	}
	return b.String()
}

func (m model) renderSheet() string {
	st := m.snap
	p := st.Player
	var b strings.Builder
	b.WriteString(m.styles.title.Render(strings.ToUpper(p.Name)) + "\n")
	b.WriteString(fmt.Sprintf("%s, %d  |  karma %d  |  %d caps\n\n", p.Gender, p.Age, p.Karma, p.Caps))

	b.WriteString(m.styles.label.Render("ATTRIBUTES") + "\n")
	for _, a := range engine.AllAttributes {
		b.WriteString(fmt.Sprintf("  %-12s %d\n", a, p.Attributes[a]))
	}
	b.WriteString("\n" + m.styles.label.Render("SKILLS") + "\n")
	names := make([]string, 0, len(p.Skills))
	for s := range p.Skills {
		names = append(names, string(s))
	}
	sort.Strings(names)
	for _, s := range names {
		b.WriteString(fmt.Sprintf("  %-14s %d%%\n", s, p.Skills[engine.Skill(s)]))
	}
	if len(p.Perks) > 0 {
		b.WriteString("\n" + m.styles.label.Render("PERKS") + "\n")
		for _, pk := range p.Perks {
			b.WriteString("  " + pk.Name + ": " + pk.Description + "\n")
		}
	}
	b.WriteString("\n" + m.styles.label.Render("INVENTORY") + "\n")
	for _, it := range p.Inventory {
		b.WriteString(fmt.Sprintf("  %dx %s\n", it.Count, it.Name))
	}
	b.WriteString("\n" + m.styles.muted.Render("esc: back") + "\n")
	return m.styles.box.Render(b.String())
}

func (m model) renderQuests() string {
	st := m.snap
	var b strings.Builder
	b.WriteString(m.styles.title.Render("PIP-BOY QUEST LOG") + "\n\n")
	if len(st.Quests) == 0 {
		b.WriteString(m.styles.muted.Render("Nothing yet. The wasteland will provide.") + "\n")
	}
	for _, q := range st.Quests {
		marker := "[ ]"
		style := m.styles.label
		switch q.Status {
		case engine.QuestCompleted:
			marker = "[x]"
			style = m.styles.accent
		case engine.QuestFailed:
			marker = "[!]"
			style = m.styles.danger
		}
		b.WriteString(style.Render(fmt.Sprintf("%s %s", marker, q.Name)) + "\n")
		if q.Objective != "" {
			b.WriteString("    " + q.Objective + "\n")
		}
		if q.Progress != "" {
			b.WriteString("    " + m.styles.muted.Render(q.Progress) + "\n")
		}
	}
	b.WriteString("\n" + m.styles.muted.Render("esc: back") + "\n")
	return m.styles.box.Render(b.String())
}

func (m model) renderSettings() string {
	var b strings.Builder
	b.WriteString(m.styles.title.Render("SETTINGS") + "\n\n")
	if m.pipe == nil {
		b.WriteString(m.styles.muted.Render("Settings unlock once a character exists.") + "\n")
		b.WriteString("\n" + m.styles.muted.Render("esc: back") + "\n")
		return m.styles.box.Render(b.String())
	}
	s := m.snap.Settings
	hq := "off"
	if s.HighQualityImages {
		hq = "on"
	}
	b.WriteString(fmt.Sprintf("1) image cadence   every %d turns\n", s.ImageCadence))
	b.WriteString(fmt.Sprintf("2) high quality    %s\n", hq))
	b.WriteString(fmt.Sprintf("3) theme           %s\n", m.themeName))
	b.WriteString(fmt.Sprintf("\nprovider %s  model %s  history retention %d\n", s.Provider, s.Model, s.HistoryRetention))
	b.WriteString("\n" + m.styles.muted.Render("press a number to change, esc: back") + "\n")
	return m.styles.box.Render(b.String())
}

func (m model) renderHelp() string {
	var b strings.Builder
	b.WriteString(m.styles.title.Render("HELP") + "\n\n")
	b.WriteString("Type what your character does and press enter. Every action\n")
	b.WriteString("spends one action point; points recover over time on normal\n")
	b.WriteString("accounts and not at all for guests.\n\n")
	b.WriteString("The narrator keeps the world consistent. Out-of-world requests\n")
	b.WriteString("are refused by the Overseer without costing time.\n\n")
	b.WriteString(m.styles.label.Render("Keys") + "\n")
	b.WriteString("  ctrl+s  character sheet\n")
	b.WriteString("  ctrl+q  quest log\n")
	b.WriteString("  esc     menu\n")
	b.WriteString("  ctrl+c  quit\n")
	b.WriteString("\n" + m.styles.muted.Render("esc: back") + "\n")
	return m.styles.box.Render(b.String())
}
