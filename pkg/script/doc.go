/*
Package script compiles route hooks declared as data into chains.

A route script names the items of a route's onEnter and onExit chains and an
optional guard:

	routes:
	  - name: posts
	    enter:
	      - do: log
	        args: {message: "loading posts"}
	      - do: redirect
	        when: "query:legacy"
	        args: {to: posts.archive}
	    exit:
	      - do: sleep
	        args: {duration: 50ms}
	    guard:
	      when: "!query:token"
	      reject: "login required"

Actions are log, redirect, fail and sleep. Conditions are always, never,
query:<key> (the transition's query carries a non-empty key) and any of them
negated with a leading "!".
*/
package script
