package directory

import (
	"sync"
)

// Provider holds directory of the moderated guild once it becomes available
type Provider struct {
	m   sync.RWMutex
	dir Directory
}

// NewProvider returns provider in uninitialized state
func NewProvider() *Provider {
	return &Provider{}
}

// Attach makes directory available
func (p *Provider) Attach(dir Directory) {
	p.m.Lock()
	p.dir = dir
	p.m.Unlock()
}

// Detach returns provider to uninitialized state if attached directory belongs to given guild
func (p *Provider) Detach(guildID string) (detached bool) {
	p.m.Lock()

	if p.dir != nil && p.dir.GuildID() == guildID {
		p.dir = nil
		detached = true
	}

	p.m.Unlock()

	return
}

// Get returns attached directory or ErrUninitialized
func (p *Provider) Get() (Directory, error) {
	p.m.RLock()
	defer p.m.RUnlock()

	if p.dir == nil {
		return nil, ErrUninitialized
	}

	return p.dir, nil
}

// Ready returns true when directory is attached
func (p *Provider) Ready() bool {
	_, err := p.Get()

	return err == nil
}
