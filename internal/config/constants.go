package config

import "time"

// Base application details
const AppName = "boss-editortab"
const ThemesDirName = "themes"
const DefaultConfigFileName = "config.toml"
const DefaultLogFileName = "editortab.log"

// Environment overrides
const EnvConfigPath = "BOSS_EDITORTAB_CONFIG"
const EnvLogLevel = "BOSS_EDITORTAB_LOGLEVEL"

// UI Layout
const StatusBarHeight = 1

// Status Bar
const MessageTimeout = 4 * time.Second

// Editor behaviour
const DefaultScrollOff = 3
const DefaultRescanDelay = 300 * time.Millisecond
const SystemClipboard = true
