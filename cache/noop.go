package cache

import "context"

// NoopProvider always misses and discards writes, matching Mode Bypass
// even when plugged into a Manager configured for another mode.
type NoopProvider struct{}

func (NoopProvider) Get(context.Context, string) (Entry, bool, error) { return Entry{}, false, nil }
func (NoopProvider) Set(context.Context, string, Entry) error         { return nil }
func (NoopProvider) Delete(context.Context, string) error             { return nil }
func (NoopProvider) DeleteByTag(context.Context, string) error        { return nil }
func (NoopProvider) Clear(context.Context) error                      { return nil }
