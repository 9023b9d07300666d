// Package config loads session settings from the environment and an optional .env file.
package config
