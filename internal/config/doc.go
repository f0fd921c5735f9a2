// Package config handles configuration loading for dropnest.
//
// # Overview
//
// Configuration is loaded from a YAML file with environment variable
// expansion. The package applies sensible defaults and validates the result.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from DROPNEST_CONFIG environment variable
//  2. ./dropnest.yaml (current directory)
//  3. ~/.config/dropnest/config.yaml
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	auth:
//	  admin_password_hash: "${DROPNEST_ADMIN_HASH}"
//	  token_secret: "${DROPNEST_TOKEN_SECRET}"
//
// Syntax: ${VAR_NAME}
//
// # Configuration Sections
//
// Server settings:
//
//	server:
//	  http_addr: "localhost:8080"
//
// Storage paths:
//
//	storage:
//	  data_dir: "/var/lib/dropnest"          # notes.json, passwords.json
//	  upload_dir: "/var/lib/dropnest/uploads" # shared file drop
//
// Authentication:
//
//	auth:
//	  image_sequence: [2, 6, 4, 8]   # ordered grid-cell picture password
//	  admin_password_hash: "$2a$..." # bcrypt (generate via: dropnest hash)
//	  token_secret: "${DROPNEST_TOKEN_SECRET}"
//	  login_max_attempts: 5          # per client origin
//	  admin_max_attempts: 5          # per authenticated identity
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Validation
//
// Load() validates:
//
//   - Image sequence presence and non-negative grid indices
//   - Token secret minimum length (32 bytes)
//   - Attempt ceiling values
package config
