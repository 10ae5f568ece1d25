// Package upstream provides the process-wide HTTP client used to reach
// backends. It is created once at startup and shared by every request.
package upstream
