// Package registry wires oauth clients from configuration.
//
// A Config is read from YAML, from SOCIALAUTH_* environment variables, or
// from both with the environment taking precedence:
//
//	cfg, err := registry.Load("socialauth.yaml")
//	if err != nil {
//		return err
//	}
//	reg, err := registry.New(ctx, cfg, registry.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	defer reg.Close()
//
//	auth, err := reg.Lookup("github")
//
// Every platform with a client id gets an authenticator. They share one
// HTTP executor and one token cache, which is Redis when Cache.RedisURL is
// set and in-process otherwise.
package registry
