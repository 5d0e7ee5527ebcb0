// Package google provides service-account authentication for the Google
// Calendar API.
//
// The bot authenticates as a Google Cloud service account that has been
// granted read access to the team calendars. Authentication uses the OAuth2
// JWT bearer grant: a short-lived assertion signed with the service-account
// private key is exchanged for an access token.
//
// Access tokens are held in an explicit TokenCache with a recorded expiry
// and a pure validity predicate. The cache refreshes at most once per
// expiry window and keeps a one-minute safety margin so a token is never
// used right at its deadline.
//
// Credentials are supplied via configuration:
//
//	GOOGLE_SERVICE_ACCOUNT_EMAIL        client email of the service account
//	GOOGLE_SERVICE_ACCOUNT_PRIVATE_KEY  PEM private key; literal \n escapes
//	                                    are accepted and unescaped
package google
