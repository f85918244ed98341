// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/elastic/checkscope/internal/jsonapi"
)

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if jsonapi.IsUnauthorized(err) {
			fmt.Fprintln(os.Stderr, reloginHint)
		}
		os.Exit(1)
	}
}

const reloginHint = "Hint: the server rejected the credentials. Log in again and update\n" +
	"auth.cookie or auth.token (flags --cookie/--token, env CHECKSCOPE_AUTH_COOKIE/CHECKSCOPE_AUTH_TOKEN,\n" +
	"or 'checkscope config set-profile')."
