package cli

import (
	authsession "github.com/viant/authsession"
)

// Options represents command line options; unset flags keep their environment values
type Options struct {
	authsession.Options
	Login  LoginCommand  `command:"login" description:"authenticate and store the access token"`
	Whoami WhoamiCommand `command:"whoami" description:"print the current user"`
	Logout LogoutCommand `command:"logout" description:"end the session and clear the access token"`
	Get    GetCommand    `command:"get" description:"call an API path and print the envelope data"`
	Check  CheckCommand  `command:"check" description:"evaluate access to a route"`
}

type LoginCommand struct {
	Type      string `long:"type" description:"login type" choice:"ACCOUNT_PASSWORD" choice:"PHONE_PASSWORD" choice:"EMAIL_CODE" default:"ACCOUNT_PASSWORD"`
	Account   string `short:"a" long:"account" description:"user account"`
	Password  string `short:"p" long:"password" description:"user password"`
	Phone     string `long:"phone" description:"user phone"`
	Email     string `long:"email" description:"user email"`
	Code      string `long:"code" description:"email login code"`
	SecretURL string `long:"secret" description:"scy secret URL holding account and password"`
	SecretKey string `long:"key" description:"scy secret key" default:"blowfish://default"`
}

type WhoamiCommand struct{}

type LogoutCommand struct{}

type GetCommand struct {
	Args struct {
		Path string `positional-arg-name:"path" required:"yes"`
	} `positional-args:"yes"`
}

type CheckCommand struct {
	Access string `long:"access" description:"route access requirement" choice:"notLogin" choice:"user" choice:"admin"`
	Args   struct {
		Path string `positional-arg-name:"path" required:"yes"`
	} `positional-args:"yes"`
}
