// Package domain holds the core types shared across the application.
package domain
