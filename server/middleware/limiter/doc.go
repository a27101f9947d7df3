// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package limiter throttles credential endpoints per client network.

Each network gets a token bucket holding limiter.attempts tokens that refills
over limiter.window. Only POST requests to the paths passed to New are
counted; everything else passes through untouched.
*/
package limiter
