/*
Package codegen generates typed argument keys for events from a manifest.

A manifest names the events a package publishes and the parameters each one carries, and it may be written as YAML, JSON, or TOML.
	package: auth
	events:
	  - name: user.login
	    params:
	      - name: username
	        type: string
	      - name: roles
	        type: "[]string"

[Generate] turns it into a constant per event and an eventbus.Key or eventbus.ListKey per parameter.
	const UserLogin = "user.login"
	var (
		UserLoginUsername = eventbus.NewKey[string]("username")
		UserLoginRoles    = eventbus.NewListKey[string]("roles")
	)

The eventgen command wraps this package for use with go:generate.
*/
package codegen
