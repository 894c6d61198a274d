package auth

import (
	"fmt"
	"io"
	"strings"
)

// ConsoleURL is where Apify API tokens are managed
const ConsoleURL = "https://console.apify.com/settings/integrations"

// ShowTokenGuide writes step-by-step instructions for obtaining a token
func ShowTokenGuide(w io.Writer) {
	fmt.Fprintln(w, strings.Repeat("=", 72))
	fmt.Fprintln(w, "APIFY TOKEN SETUP")
	fmt.Fprintln(w, strings.Repeat("=", 72))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "liexport runs the apimaestro/linkedin-profile-posts actor on Apify")
	fmt.Fprintln(w, "and needs an API token from your Apify account.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "STEP 1: Sign in at https://console.apify.com")
	fmt.Fprintln(w, "STEP 2: Open Settings > API & Integrations")
	fmt.Fprintf(w, "        %s\n", ConsoleURL)
	fmt.Fprintln(w, "STEP 3: Copy the personal API token")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Then either:")
	fmt.Fprintln(w, "   • run 'liexport auth login' and paste it (stored in the keychain")
	fmt.Fprintln(w, "     or an encrypted file)")
	fmt.Fprintf(w, "   • export %s=<token>\n", EnvToken)
	fmt.Fprintln(w, "   • pass --token on each run")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "WARNING: the token can start paid actor runs on your account.")
	fmt.Fprintln(w, "Never commit it or share it.")
	fmt.Fprintln(w, strings.Repeat("=", 72))
}

// ShowQuickTokenGuide writes a one-line reminder
func ShowQuickTokenGuide(w io.Writer) {
	fmt.Fprintf(w, "No Apify token found. Run 'liexport auth login', set %s, or pass --token.\n", EnvToken)
}
