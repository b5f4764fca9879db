// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse loads server configuration.

Sources, lowest to highest precedence:

 1. Defaults from struct tags
 2. YAML file given by -c or CONFIG_PATH
 3. Environment variables (a .env file in the working directory is loaded first)
 4. Command-line flags

# Settings

	PORT (-p)                     default 3318
	DATABASE_URL (-d)             required
	DATABASE_TYPE (-t)            sqlite or postgres, default sqlite
	ADMIN_KEY_SALT (--admin-salt) required
	IP_HASH_SALT (--ip-salt)      defaults to ADMIN_KEY_SALT
	ENV (--env)                   default local
	LOG_FORMAT (--log-format)     text or json, default depends on terminal
	VOTE_POLICY (--vote-policy)   multiple or single, default multiple
	CORS_ORIGINS                  comma separated, default *
*/
package cliparse
