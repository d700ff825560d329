// Package config resolves runtime settings from EWSFREEBUSY_* environment
// variables and an optional dotenv file.
package config
