// Package authservice implements account registration, credential login, and
// bearer-token identity inside the identity-access context.
//
// The module owns user lifecycle, bcrypt credential verification, and HS256
// token issue/verify against the platform shared secret. Downstream modules
// re-validate bearer tokens through this module's verifier rather than
// trusting upstream headers.
package authservice
