package main

import (
	"fmt"
	"io"
)

func printHelp(w io.Writer) {
	fmt.Fprint(w, `casedesk - staff console for the case-opening backend

Usage:
  casedesk                       open the console
  casedesk spin <id> [--bonus]   print spin details
  casedesk verify <id> [--bonus] re-run the fairness check of a spin
  casedesk dashboard [-p 7d]     print report KPIs for a period
  casedesk logout                clear the stored session
  casedesk version               show version

Configuration is read from ~/.casedesk/config.yaml, a .env file in the
working directory and CASEDESK_* environment variables:
  CASEDESK_API_URL        backend base URL (default http://127.0.0.1:8000)
  CASEDESK_TOKEN_STORE    file or redis
  CASEDESK_REDIS_ADDR     redis address when token_store=redis
  CASEDESK_LOG_LEVEL      debug, info, warn, error or silent
`)
}
