package tui

import "charm.land/bubbles/v2/key"

// keyMap represents key map data used by this package.
type keyMap struct {
	quit       key.Binding
	toggleHelp key.Binding
	nextView   key.Binding
	prevView   key.Binding
	jumpView   key.Binding
	moveLeft   key.Binding
	moveRight  key.Binding
	moveUp     key.Binding
	moveDown   key.Binding
	grab       key.Binding
	cancel     key.Binding
	newItem    key.Binding
	search     key.Binding
	compose    key.Binding
	copyEmail  key.Binding
	reload     key.Binding
}

// newKeyMap constructs key map.
func newKeyMap() keyMap {
	return keyMap{
		quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		toggleHelp: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		nextView:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next view")),
		prevView:   key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous view")),
		jumpView:   key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6"), key.WithHelp("1-6", "jump to view")),
		moveLeft:   key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "column left")),
		moveRight:  key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "column right")),
		moveUp:     key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		moveDown:   key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		grab:       key.NewBinding(key.WithKeys("space"), key.WithHelp("space", "grab/drop card")),
		cancel:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel drag")),
		newItem:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new card")),
		search:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		compose:    key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "compose message")),
		copyEmail:  key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy email")),
		reload:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	}
}

// applyKeyConfig rebinds the configurable action keys. Empty values keep the defaults.
func (k *keyMap) applyKeyConfig(cfg KeyConfig) {
	rebind := func(b *key.Binding, raw, desc string) {
		if raw == "" {
			return
		}
		name := raw
		if raw == " " {
			name = "space"
		}
		*b = key.NewBinding(key.WithKeys(name), key.WithHelp(name, desc))
	}
	rebind(&k.grab, cfg.Grab, "grab/drop card")
	rebind(&k.newItem, cfg.NewItem, "new card")
	rebind(&k.search, cfg.Search, "search")
	rebind(&k.compose, cfg.Compose, "compose message")
	rebind(&k.copyEmail, cfg.Copy, "copy email")
}

// ShortHelp handles short help.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.nextView, k.grab, k.newItem, k.search, k.toggleHelp, k.quit,
	}
}

// FullHelp handles full help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.nextView, k.prevView, k.jumpView, k.toggleHelp, k.reload, k.quit},
		{k.moveLeft, k.moveRight, k.moveUp, k.moveDown},
		{k.grab, k.cancel, k.newItem, k.search, k.compose, k.copyEmail},
	}
}
