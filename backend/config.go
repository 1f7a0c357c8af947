package main

import "sync"

type Config struct {
	AiDepth          int   `json:"ai_depth"`
	AiSeed           int64 `json:"ai_seed"`
	AiLogSearchStats bool  `json:"ai_log_search_stats"`
	UndoHistoryLimit int   `json:"undo_history_limit"`
	TickIntervalMs   int   `json:"tick_interval_ms"`
}

type ConfigStore struct {
	mu     sync.RWMutex
	config Config
}

func DefaultConfig() Config {
	return Config{
		AiDepth:          3,
		AiSeed:           0, // 0 means seed from the clock
		AiLogSearchStats: false,
		UndoHistoryLimit: 50,
		TickIntervalMs:   50,
	}
}

var configStore = &ConfigStore{config: DefaultConfig()}

func GetConfig() Config {
	return configStore.Get()
}

func (c *ConfigStore) Get() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}

func (c *ConfigStore) Update(newConfig Config) {
	c.mu.Lock()
	c.config = newConfig
	c.mu.Unlock()
}
